package db

import (
	"context"
	"testing"
)

func TestConnFromContext_Empty(t *testing.T) {
	if ConnFromContext(context.Background()) != nil {
		t.Error("expected nil connection from bare context")
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	if TxFromContext(context.Background()) != nil {
		t.Error("expected nil transaction from bare context")
	}
}

func TestWithTx_NoConnection(t *testing.T) {
	if _, _, err := WithTx(context.Background()); err == nil {
		t.Error("expected error when no request connection is in context")
	}
}
