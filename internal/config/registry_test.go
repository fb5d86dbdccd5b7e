package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const registryYAML = `
tokens:
  - symbol: SOL
    mint: So11111111111111111111111111111111111111112
    decimals: 9
  - symbol: USDC
    mint: EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
    decimals: 6
`

func TestParseRegistry(t *testing.T) {
	r, err := ParseRegistry([]byte(registryYAML))
	require.NoError(t, err)

	usdc, ok := r.Lookup("usdc")
	require.True(t, ok)
	require.Equal(t, uint8(6), usdc.Decimals)

	_, ok = r.Lookup("BONK")
	require.False(t, ok)
}

func TestResolveMint(t *testing.T) {
	r, err := ParseRegistry([]byte(registryYAML))
	require.NoError(t, err)

	bySymbol, err := r.ResolveMint("SOL")
	require.NoError(t, err)
	require.Equal(t, "So11111111111111111111111111111111111111112", bySymbol.String())

	raw, err := r.ResolveMint("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)
	require.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", raw.String())

	_, err = r.ResolveMint("not-a-mint")
	require.Error(t, err)
}

func TestParseRegistryRejectsBadMint(t *testing.T) {
	_, err := ParseRegistry([]byte("tokens:\n  - symbol: BAD\n    mint: zzz\n    decimals: 0\n"))
	require.Error(t, err)
}
