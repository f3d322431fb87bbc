package store_test

import (
	"testing"

	"zkvault/internal/permission/store"
)

func TestInMemoryStoreContract(t *testing.T) {
	runStoreContract(t, store.NewInMemoryStore())
}
