package exchangedto

import "github.com/humanistic-tech/exchange-service/internal/domain"

type CreateTransactionInput struct {
	FromCurrency string
	ToCurrency   string
	ToAddress    string
	Amount       *float64
	Owner        domain.Owner
	Channel      domain.Channel
}
