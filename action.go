package ledger

import "fmt"

// Action is what a transaction does. Buy and Sell apply to equities, the four
// other actions to options.
type Action string

const (
	Buy         Action = "buy"
	Sell        Action = "sell"
	BuyToOpen   Action = "buy_to_open"
	SellToOpen  Action = "sell_to_open"
	BuyToClose  Action = "buy_to_close"
	SellToClose Action = "sell_to_close"
)

// Actions lists all actions.
var Actions = []Action{Buy, Sell, BuyToOpen, SellToOpen, BuyToClose, SellToClose}

// ParseAction parses the wire name of an action. camelCase names
// ("buyToOpen") are accepted too.
func ParseAction(s string) (Action, error) {
	switch s {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "buy_to_open", "buyToOpen", "bto":
		return BuyToOpen, nil
	case "sell_to_open", "sellToOpen", "sto":
		return SellToOpen, nil
	case "buy_to_close", "buyToClose", "btc":
		return BuyToClose, nil
	case "sell_to_close", "sellToClose", "stc":
		return SellToClose, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

func (a Action) IsEquity() bool  { return a == Buy || a == Sell }
func (a Action) IsOption() bool  { return a == BuyToOpen || a == SellToOpen || a == BuyToClose || a == SellToClose }
func (a Action) IsOpening() bool { return a == Buy || a == BuyToOpen || a == SellToOpen }
func (a Action) IsClosing() bool { return a == Sell || a == BuyToClose || a == SellToClose }
func (a Action) IsBuy() bool     { return a == Buy || a == BuyToOpen || a == BuyToClose }
func (a Action) IsSell() bool    { return a == Sell || a == SellToOpen || a == SellToClose }
func (a Action) String() string  { return string(a) }

// Kind returns the kind of instrument the action applies to.
func (a Action) Kind() Kind {
	if a.IsEquity() {
		return KindEquity
	}
	return KindOption
}

// closes reports whether a closing action consumes lots opened by open:
// buy to close only consumes short lots, sell to close only long ones.
func (a Action) closes(open Action) bool {
	return (a == BuyToClose && open == SellToOpen) || (a == SellToClose && open == BuyToOpen)
}

// MarshalText makes sure only known actions are persisted.
func (a Action) MarshalText() ([]byte, error) {
	if _, err := ParseAction(string(a)); err != nil {
		return nil, err
	}
	return []byte(a), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
