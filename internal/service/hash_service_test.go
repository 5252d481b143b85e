package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
func testHashService() *Argon2HashService {
	return NewArgon2HashServiceWithParams(Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
}

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := testHashService()

	hash, err := svc.Hash("4821")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"))

	match, err := svc.Verify("4821", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = svc.Verify("4822", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestArgon2HashService_UniqueSalts(t *testing.T) {
	svc := testHashService()

	hash1, err := svc.Hash("123456")
	require.NoError(t, err)
	hash2, err := svc.Hash("123456")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestArgon2HashService_RejectsInvalidPIN(t *testing.T) {
	svc := testHashService()

	for _, pin := range []string{"", "123", "1234567890123", "12a4", "12 34", "１２３４"} {
		_, err := svc.Hash(pin)
		assert.ErrorIs(t, err, ErrInvalidPIN, pin)
	}
}

func TestArgon2HashService_VerifyUsesStoredParams(t *testing.T) {
	old := testHashService()
	hash, err := old.Hash("9090")
	require.NoError(t, err)

	match, err := NewArgon2HashService().Verify("9090", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestArgon2HashService_DefaultParamsInHash(t *testing.T) {
	hash, err := NewArgon2HashService().Hash("0000")
	require.NoError(t, err)
	assert.Contains(t, hash, "m=65536,t=3,p=2")
}

func TestArgon2HashService_VerifyInvalidFormat(t *testing.T) {
	svc := testHashService()

	for _, encoded := range []string{
		"not-a-valid-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=16$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!$aGFzaA",
	} {
		_, err := svc.Verify("1234", encoded)
		assert.Error(t, err, encoded)
	}
}
