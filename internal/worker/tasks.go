package worker

import (
	"fmt"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"fantasy_trades/internal/domain/service/prices"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	TypeAnnotateTrades  = "trades:annotate"
	TypeReconcilePrices = "prices:reconcile"
)

type AnnotateTradesPayload struct {
	Dataset string `json:"dataset"`
}

type ReconcilePricesPayload struct {
	Mode prices.Mode `json:"mode"`
}

func NewAnnotateTradesTask(dataset string) (*asynq.Task, error) {
	payload, err := json.Marshal(AnnotateTradesPayload{Dataset: dataset})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return asynq.NewTask(TypeAnnotateTrades, payload), nil
}

func NewReconcilePricesTask(mode prices.Mode) (*asynq.Task, error) {
	payload, err := json.Marshal(ReconcilePricesPayload{Mode: mode})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return asynq.NewTask(TypeReconcilePrices, payload), nil
}
