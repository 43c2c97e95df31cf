package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSymbolMapperResolve(t *testing.T) {
	mapper := StaticSymbolMapper{"AAPL": "AAPL.US"}
	symbol, err := mapper.Resolve("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL.US", symbol)
}

func TestStaticSymbolMapperResolveRejectsUnknownAsset(t *testing.T) {
	mapper := StaticSymbolMapper{}
	_, err := mapper.Resolve("MISSING")
	assert.Error(t, err)
	var mappingErr *SymbolMappingError
	assert.ErrorAs(t, err, &mappingErr)
}
