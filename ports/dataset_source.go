package ports

import (
	"custlens/domain/customer"
)

// DatasetSource yields the dataset a dashboard is computed over.
type DatasetSource interface {
	Dataset() (*customer.Dataset, error)
}
