package i18n

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirection(t *testing.T) {
	for i, tc := range []struct {
		locale string
		rtl    bool
	}{
		{"", false},
		{"en", false},
		{"fr_FR.UTF-8", false},
		{"de-CH", false},
		{"ar", true},
		{"ar_EG.UTF-8", true},
		{"he_IL", true},
		{"fa", true},
		{"ur-PK", true},
		{"dv", true},
		{"ru", false},
		{"ja", false},
	} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			l, err := Parse(tc.locale)
			require.NoError(t, err)
			require.Equal(t, tc.rtl, l.IsRTL(), l.String())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not a locale")
	require.Error(t, err)

	require.Panics(t, func() { MustParse("???") })
}

func TestCollator(t *testing.T) {
	words := []string{"Zola", "éclair", "Abbé", "eclat", "Ecole"}

	MustParse("fr").NewCollator().SortStrings(words)
	require.Equal(t, []string{"Abbé", "éclair", "eclat", "Ecole", "Zola"}, words)
}

func TestUpper(t *testing.T) {
	require.Equal(t, "İ", MustParse("tr").Upper("i"))
	require.Equal(t, "I", MustParse("en").Upper("i"))
}
