package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeEmail(t *testing.T) {
	require.Equal(t, "dara@example.com", SanitizeEmail("  Dara@Example.COM "))
	require.Empty(t, SanitizeEmail(strings.Repeat("a", MaxEmailLength)+"@example.com"))
}

func TestSanitizePassword(t *testing.T) {
	require.Equal(t, "pw1234567", SanitizePassword(" pw1234567 "))
	require.Empty(t, SanitizePassword(strings.Repeat("x", MaxPasswordLength+1)))
}

func TestTruncateField(t *testing.T) {
	require.Equal(t, "short", TruncateField("short"))
	long := strings.Repeat("x", MaxFieldLength+500)
	require.Len(t, TruncateField(long), MaxFieldLength)
}
