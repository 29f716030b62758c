package wallet

type AmountReq struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}
