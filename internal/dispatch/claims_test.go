package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClaims(t *testing.T) {
	claims, err := DecodeClaims([]byte(`
claims:
  - id: ytm
    operation: bond.ytm
    args:
      face_value: 1000
      coupon_rate: 0.05
      price: 950
      years_to_maturity: 10
    claim: "5.6%"
  - id: dd
    operation: risk.max_drawdown
    args:
      values: [100, 120, 90, 110]
    claim: "-25%"
`))
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, "bond.ytm", claims[0].Operation)
	assert.Equal(t, 950, claims[0].Args["price"])
	assert.Equal(t, "-25%", claims[1].Claim)

	_, err = DecodeClaims([]byte("claims: [unterminated"))
	assert.Error(t, err)
}

func TestLoadClaimsExample(t *testing.T) {
	claims, err := LoadClaims("../../test/test_claims.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, claims)

	d, trail := newDispatcher(t)
	for _, c := range claims {
		_, err := d.Verify(c.Operation, c.Args, c.Claim)
		require.NoError(t, err, c.ID)
	}
	assert.Equal(t, len(claims), trail.Summary().Total)

	_, err = LoadClaims("missing.yaml")
	assert.Error(t, err)
}
