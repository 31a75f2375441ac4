package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want Code
	}{
		{"", EN},
		{"   ", EN},
		{"de", DE},
		{" It ", IT},
		{"UK", UK},
		{"ar", AR},
		{"de-AT", DE},
		{"it_IT", IT},
		{"fr-CA", FR},
		{"pt-BR", EN},
		{"klingon", EN},
		{"zz-ZZ-garbage", EN},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Normalize(tc.in), "in=%q", tc.in)
	}
}

func TestNormalize_AlwaysSupported(t *testing.T) {
	inputs := []string{"x", "123", "😀", "en-", "-", "__", "DEU", "english", "\x00", strings.Repeat("a", 100)}
	for _, in := range inputs {
		require.True(t, Normalize(in).Supported(), "in=%q", in)
	}
}

func TestSupported_CoversNames(t *testing.T) {
	require.Len(t, Supported(), 11)
	for _, c := range Supported() {
		require.True(t, c.Supported())
		require.NotEmpty(t, c.Name())
	}
	require.Equal(t, "English", Code("XX").Name())
}

func TestLookup_FallsBackToDefault(t *testing.T) {
	table := map[Code]string{EN: "hello", DE: "hallo"}
	require.Equal(t, "hallo", Lookup(table, DE))
	require.Equal(t, "hello", Lookup(table, IT))
	require.Equal(t, "hello", Lookup(table, Code("??")))
}

func TestFold(t *testing.T) {
	require.Equal(t, "bestatige", Fold("Bestätige"))
	require.Equal(t, "si, procedi", Fold("  Sì,   procedi "))
	require.Equal(t, "je n'ai pas recu", Fold("Je n’ai pas reçu"))
	require.Equal(t, "mit freundlichen grußen", Fold("Mit freundlichen Grüßen"))
	require.Equal(t, "grußen", Fold("GRÜßEN"))
	require.Equal(t, "z powazaniem", Fold("Z poważaniem"))
	require.Equal(t, "", Fold("   "))
}

func TestTruncate(t *testing.T) {
	out, cut := Truncate("hello", 10)
	require.False(t, cut)
	require.Equal(t, "hello", out)

	out, cut = Truncate("hello", 5)
	require.False(t, cut)
	require.Equal(t, "hello", out)

	out, cut = Truncate("hello", 3)
	require.True(t, cut)
	require.Equal(t, "hel", out)

	out, cut = Truncate("ĞüŞ", 2)
	require.True(t, cut)
	require.Equal(t, "Ğü", out)

	out, cut = Truncate("anything", 0)
	require.False(t, cut)
	require.Equal(t, "anything", out)
}
