package models

import "github.com/google/uuid"

// ContractPricedEvent is published once per batch row, whether it failed or not.
type ContractPricedEvent struct {
	BatchID    uuid.UUID
	ContractID string
	Index      int
	Total      int
	Status     string
	Err        error
}

type BatchCompletedEvent struct {
	BatchID   uuid.UUID
	Total     int
	Failed    int
	Cancelled bool
}
