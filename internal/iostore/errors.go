package iostore

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnpull/pkg/errcode"
)

// UnknownModelError is returned for models missing from the catalog.
func UnknownModelError(model string) error {
	msg := "Model <em>%s</em> is not described in the schema catalog"
	vars := []any{model}

	return &gn.Error{
		Code: errcode.SchemaUnknownModelError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown local model %s", model),
	}
}

// QueryError is returned when a read or write of a local table fails.
func QueryError(table string, err error) error {
	msg := "Cannot access local table <em>%s</em>"
	vars := []any{table}

	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("query on %s failed: %w", table, err),
	}
}

// NoPrimaryKeyError is returned when a record without primary key has
// to be updated or linked.
func NoPrimaryKeyError(model string) error {
	msg := "Local model <em>%s</em> has no primary key, its rows cannot be updated"
	vars := []any{model}

	return &gn.Error{
		Code: errcode.StoreUnknownColumnError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("model %s has no primary key", model),
	}
}

// TransactionError is returned when a transaction cannot be committed.
func TransactionError(err error) error {
	msg := "Local transaction failed, no records were saved"

	return &gn.Error{
		Code: errcode.StoreTransactionError,
		Msg:  msg,
		Err:  fmt.Errorf("transaction failed: %w", err),
	}
}
