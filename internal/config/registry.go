package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

// TokenInfo describes one entry of the token registry.
type TokenInfo struct {
	Symbol   string `yaml:"symbol"`
	Mint     string `yaml:"mint"`
	Decimals uint8  `yaml:"decimals"`
}

// Registry maps human-readable token symbols to mints, so CLI flows can
// accept "USDC" instead of a base58 mint address.
type Registry struct {
	Tokens []TokenInfo `yaml:"tokens"`

	bySymbol map[string]TokenInfo
}

// LoadRegistry reads a YAML token registry from path.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token registry: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses YAML registry contents.
func ParseRegistry(data []byte) (*Registry, error) {
	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse token registry: %w", err)
	}

	r.bySymbol = make(map[string]TokenInfo, len(r.Tokens))
	for _, t := range r.Tokens {
		if _, err := solana.PublicKeyFromBase58(t.Mint); err != nil {
			return nil, fmt.Errorf("token %s has invalid mint %q: %w", t.Symbol, t.Mint, err)
		}
		r.bySymbol[strings.ToUpper(t.Symbol)] = t
	}
	return &r, nil
}

// Lookup returns the registry entry for a symbol, case-insensitive.
func (r *Registry) Lookup(symbol string) (TokenInfo, bool) {
	t, ok := r.bySymbol[strings.ToUpper(symbol)]
	return t, ok
}

// ResolveMint accepts either a registered symbol or a raw base58 mint.
// For raw mints the decimals are unknown and reported as ok=false on the
// registry entry; callers should take decimals from on-chain state.
func (r *Registry) ResolveMint(symbolOrMint string) (solana.PublicKey, error) {
	if r != nil {
		if t, ok := r.Lookup(symbolOrMint); ok {
			return solana.PublicKeyFromBase58(t.Mint)
		}
	}
	pk, err := solana.PublicKeyFromBase58(symbolOrMint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("unknown token %q: %w", symbolOrMint, err)
	}
	return pk, nil
}
