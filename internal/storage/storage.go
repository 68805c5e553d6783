package storage

import "txflow/internal/model"

// Storage defines a sink for decoded transaction flows.
type Storage interface {
	PutFlows(flows []model.TransactionFlow) error
}
