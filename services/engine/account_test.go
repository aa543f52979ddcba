package engine

import "testing"

func TestSettleLongProfit(t *testing.T) {
	acct := newAccountant(1000, 0)
	entry := Entry{Side: Long, Price: 100, Time: 1, DynamicThreshold: 5}
	exit := trailExit{price: 110, time: 9}

	trade := acct.settle(entry, exit, nil, 10)
	if trade.Pnl != 10 {
		t.Fatalf("expected pnl 10, got %v", trade.Pnl)
	}
	if trade.PnlPct != 10 {
		t.Fatalf("expected pnl pct 10, got %v", trade.PnlPct)
	}
	if trade.BalanceAfter != 1010 || acct.balance != 1010 {
		t.Fatalf("expected balance 1010, got %v", acct.balance)
	}
	// 10% of the pre-trade balance 1000 at price 100 -> 1 unit.
	if trade.PositionSize != 1 {
		t.Fatalf("expected position size 1, got %v", trade.PositionSize)
	}
}

func TestSettleShortLoss(t *testing.T) {
	acct := newAccountant(1000, 0)
	entry := Entry{Side: Short, Price: 100, Time: 1}
	exit := trailExit{price: 105, time: 9}

	trade := acct.settle(entry, exit, nil, 10)
	if trade.Pnl != -5 {
		t.Fatalf("short exit above entry must lose: expected -5, got %v", trade.Pnl)
	}
	if acct.balance != 995 {
		t.Fatalf("expected balance 995, got %v", acct.balance)
	}
}

func TestBalanceHistoryOrdering(t *testing.T) {
	acct := newAccountant(1000, 0)
	acct.settle(Entry{Side: Long, Price: 100, Time: 1}, trailExit{price: 110, time: 5}, nil, 10)
	acct.settle(Entry{Side: Long, Price: 100, Time: 6}, trailExit{price: 95, time: 9}, nil, 10)

	if len(acct.history) != 3 {
		t.Fatalf("expected deposit + 2 trade updates, got %d", len(acct.history))
	}
	if acct.history[0].Kind != balanceKindDeposit {
		t.Fatal("history must start with the deposit")
	}
	if acct.history[1].Balance != 1010 || acct.history[2].Balance != 1005 {
		t.Fatalf("balances must fold sequentially: got %v then %v", acct.history[1].Balance, acct.history[2].Balance)
	}
	if acct.history[1].Timestamp > acct.history[2].Timestamp {
		t.Fatal("updates must be in candle-time order")
	}
}

func TestPositionSizeUsesPreTradeBalance(t *testing.T) {
	acct := newAccountant(1000, 0)
	first := acct.settle(Entry{Side: Long, Price: 100, Time: 1}, trailExit{price: 200, time: 5}, nil, 50)
	second := acct.settle(Entry{Side: Long, Price: 100, Time: 6}, trailExit{price: 100, time: 9}, nil, 50)

	if first.PositionSize != 5 { // 50% of 1000 / 100
		t.Fatalf("expected 5 units, got %v", first.PositionSize)
	}
	// Second trade sizes off the post-first balance 1100, never a look-ahead.
	if second.PositionSize != 5.5 {
		t.Fatalf("expected 5.5 units, got %v", second.PositionSize)
	}
}

func TestTrailMetrics(t *testing.T) {
	events := []TrailingStopEvent{
		{Kind: EventInitial, Price: 90},
		{Kind: EventTrailUp, Price: 100},
		{Kind: EventTrailUp, Price: 110},
		{Kind: EventHit, Price: 110},
	}
	count, avg, max := trailMetrics(events)
	if count != 2 {
		t.Fatalf("expected 2 trails, got %d", count)
	}
	if avg != 10 || max != 10 {
		t.Fatalf("expected avg/max distance 10/10, got %v/%v", avg, max)
	}
}
