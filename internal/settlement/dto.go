package settlement

import "github.com/ykuznetsov/settleup/internal/money"

// SettlementResponse is a single instructed payment on the wire. Amounts are
// rendered as two-decimal strings so clients never see binary float noise.
type SettlementResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// PlanResponse is the full settlement plan on the wire.
type PlanResponse struct {
	Balances    map[string]string    `json:"balances"`
	Settlements []SettlementResponse `json:"settlements"`
}

// UserViewResponse is the per-user settlement view on the wire.
type UserViewResponse struct {
	NetBalance string               `json:"net_balance"`
	Owes       []SettlementResponse `json:"owes"`
	OwedBy     []SettlementResponse `json:"owed_by"`
}

func toSettlementResponses(settlements []Settlement) []SettlementResponse {
	out := make([]SettlementResponse, len(settlements))
	for i, s := range settlements {
		out[i] = SettlementResponse{From: s.From, To: s.To, Amount: money.Format(s.Amount)}
	}
	return out
}

// ToResponse converts a Plan to its wire representation.
func (p Plan) ToResponse() *PlanResponse {
	balances := make(map[string]string, len(p.Balances))
	for id, balance := range p.Balances {
		balances[id] = money.Format(balance)
	}
	return &PlanResponse{
		Balances:    balances,
		Settlements: toSettlementResponses(p.Settlements),
	}
}

// ToResponse converts a UserView to its wire representation.
func (v UserView) ToResponse() *UserViewResponse {
	return &UserViewResponse{
		NetBalance: money.Format(v.NetBalance),
		Owes:       toSettlementResponses(v.Owes),
		OwedBy:     toSettlementResponses(v.OwedBy),
	}
}
