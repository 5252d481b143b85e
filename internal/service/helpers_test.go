package service

import (
	"context"
	"testing"

	"restaurant-pos/config"
	"restaurant-pos/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTx implements pgx.Tx for testing
type mockTx struct {
	pgx.Tx
	committed bool
}

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error {
	m.committed = true
	return nil
}

func testPayFastConfig() config.PayFastConfig {
	return config.PayFastConfig{
		MerchantID:         config.SandboxMerchantID,
		MerchantKey:        config.SandboxMerchantKey,
		Passphrase:         testPassphrase,
		Sandbox:            true,
		PublicBaseURL:      "https://pos.example.com",
		ValidHosts:         []string{"www.payfast.co.za", "sandbox.payfast.co.za", "w1w.payfast.co.za", "w2w.payfast.co.za"},
		AmountTolerance:    0.01,
		ServerConfirmation: true,
	}
}

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}
