package bencode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_Integer(t *testing.T) {
	t.Parallel()

	value, rest, err := Parse([]byte("i3e"))
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, value.Equal(NewInteger(3)))

	value, rest, err = Parse([]byte("i-3eabc"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), rest)
	require.True(t, value.Equal(NewInteger(-3)))

	value, _, err = Parse([]byte("i0e"))
	require.NoError(t, err)
	require.True(t, value.Equal(NewInteger(0)))

	// "-0" is accepted and parses to zero
	value, _, err = Parse([]byte("i-0e"))
	require.NoError(t, err)
	require.True(t, value.Equal(NewInteger(0)))

	// no leading-zero rejection
	value, _, err = Parse([]byte("i007e"))
	require.NoError(t, err)
	require.True(t, value.Equal(NewInteger(7)))

	value, _, err = Parse([]byte("i1234567890e"))
	require.NoError(t, err)
	require.True(t, value.Equal(NewInteger(1234567890)))
}

func TestParse_IntegerErrors(t *testing.T) {
	t.Parallel()

	// truncated integers are incomplete, not malformed
	_, _, err := Parse([]byte("i3"))
	require.ErrorIs(t, err, ErrIncompleteInput)

	_, _, err = Parse([]byte("i"))
	require.ErrorIs(t, err, ErrIncompleteInput)

	_, _, err = Parse([]byte("i-"))
	require.ErrorIs(t, err, ErrIncompleteInput)

	_, _, err = Parse([]byte("ie"))
	require.ErrorIs(t, err, ErrInvalidInteger)

	_, _, err = Parse([]byte("i-e"))
	require.ErrorIs(t, err, ErrInvalidInteger)

	_, _, err = Parse([]byte("i3x"))
	require.ErrorIs(t, err, ErrInvalidInteger)

	// 21 digits exceed the cap
	_, _, err = Parse([]byte("i123456789012345678901e"))
	require.ErrorIs(t, err, ErrInvalidInteger)

	// 20 digits within the cap but outside the int64 range
	_, _, err = Parse([]byte("i99999999999999999999e"))
	require.ErrorIs(t, err, ErrInvalidInteger)
}

func TestParse_String(t *testing.T) {
	t.Parallel()

	value, rest, err := Parse([]byte("3:abc"))
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, value.IsText())
	require.Equal(t, "abc", value.Text())

	value, rest, err = Parse([]byte("3:abcdef"))
	require.NoError(t, err)
	require.Equal(t, []byte("def"), rest)
	require.Equal(t, "abc", value.Text())

	value, rest, err = Parse([]byte("0:"))
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, value.IsText())
	require.Equal(t, "", value.Text())

	value, rest, err = Parse([]byte("0:abc"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), rest)
	require.Equal(t, "", value.Text())
}

func TestParse_NonUTF8StringIsBinary(t *testing.T) {
	t.Parallel()

	value, rest, err := Parse([]byte("3:ab\xff"))
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, value.IsBinary())
	require.Equal(t, []byte("ab\xff"), value.Bytes())
}

func TestParse_StringErrors(t *testing.T) {
	t.Parallel()

	// declared length beyond the remaining bytes is always incomplete,
	// never malformed
	_, _, err := Parse([]byte("3:ab"))
	require.ErrorIs(t, err, ErrIncompleteInput)
	require.NotErrorIs(t, err, ErrMalformedLengthPrefix)

	_, _, err = Parse([]byte("10:abc"))
	require.ErrorIs(t, err, ErrIncompleteInput)

	_, _, err = Parse([]byte("3"))
	require.ErrorIs(t, err, ErrIncompleteInput)

	_, _, err = Parse([]byte("3abcd"))
	require.ErrorIs(t, err, ErrMalformedLengthPrefix)

	_, _, err = Parse([]byte("123456789012345678901:a"))
	require.ErrorIs(t, err, ErrMalformedLengthPrefix)
}

func TestParse_List(t *testing.T) {
	t.Parallel()

	value, rest, err := Parse([]byte("le"))
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, value.IsList())
	require.Empty(t, value.Items())

	value, _, err = Parse([]byte("li3ei4e4:abcde"))
	require.NoError(t, err)
	expected := NewList([]Value{NewInteger(3), NewInteger(4), NewText("abcd")})
	require.True(t, value.Equal(expected))

	value, _, err = Parse([]byte("lli5eee"))
	require.NoError(t, err)
	expected = NewList([]Value{NewList([]Value{NewInteger(5)})})
	require.True(t, value.Equal(expected))
}

func TestParse_ListErrors(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]byte("l"))
	require.ErrorIs(t, err, ErrIncompleteInput)

	_, _, err = Parse([]byte("li3e"))
	require.ErrorIs(t, err, ErrIncompleteInput)

	_, _, err = Parse([]byte("labce"))
	require.ErrorIs(t, err, ErrUnterminatedContainer)
}

func TestParse_Dictionary(t *testing.T) {
	t.Parallel()

	value, rest, err := Parse([]byte("de"))
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, value.IsDictionary())
	require.Empty(t, value.Entries())

	value, _, err = Parse([]byte("d1:ai4e1:b3:cowe"))
	require.NoError(t, err)
	expected := NewDictionary(map[string]Value{
		"a": NewInteger(4),
		"b": NewText("cow"),
	})
	require.True(t, value.Equal(expected))

	value, _, err = Parse([]byte("d1:ai4e1:b3:cow1:cli1ei2ei3eee"))
	require.NoError(t, err)
	expected = NewDictionary(map[string]Value{
		"a": NewInteger(4),
		"b": NewText("cow"),
		"c": NewList([]Value{NewInteger(1), NewInteger(2), NewInteger(3)}),
	})
	require.True(t, value.Equal(expected))
}

func TestParse_DictionaryDuplicateKeysLastWins(t *testing.T) {
	t.Parallel()

	value, _, err := Parse([]byte("d1:ai1e1:ai2ee"))
	require.NoError(t, err)
	require.True(t, value.Equal(NewDictionary(map[string]Value{"a": NewInteger(2)})))
}

func TestParse_DictionaryErrors(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]byte("d"))
	require.ErrorIs(t, err, ErrIncompleteInput)

	_, _, err = Parse([]byte("d1:a"))
	require.ErrorIs(t, err, ErrIncompleteInput)

	_, _, err = Parse([]byte("di3ei4ee"))
	require.ErrorIs(t, err, ErrUnterminatedContainer)

	_, _, err = Parse([]byte{'d', '1', ':', 0xff, 'i', '1', 'e', 'e'})
	require.ErrorIs(t, err, ErrNonTextKey)
}

func TestParse_BorrowsFromInput(t *testing.T) {
	t.Parallel()

	buffer := []byte("3:abc")
	value, _, err := Parse(buffer)
	require.NoError(t, err)
	require.False(t, value.IsOwned())

	buffer[2] = 'x'
	require.Equal(t, "xbc", value.Text())
}

func TestParse_DepthLimit(t *testing.T) {
	t.Parallel()

	deep := strings.Repeat("l", MaxDepth+10) + strings.Repeat("e", MaxDepth+10)
	_, _, err := Parse([]byte(deep))
	require.ErrorIs(t, err, ErrMaxDepthExceeded)

	shallow := strings.Repeat("l", 100) + strings.Repeat("e", 100)
	_, _, err = Parse([]byte(shallow))
	require.NoError(t, err)
}

func TestParseAll_GroupingRule(t *testing.T) {
	t.Parallel()

	// zero values decode to Empty
	value, err := ParseAll([]byte(""))
	require.NoError(t, err)
	require.True(t, value.IsEmpty())

	// exactly one value decodes unwrapped
	value, err = ParseAll([]byte("i3e"))
	require.NoError(t, err)
	require.True(t, value.Equal(NewInteger(3)))

	// two or more decode to a list
	value, err = ParseAll([]byte("i3ei4e"))
	require.NoError(t, err)
	require.True(t, value.Equal(NewList([]Value{NewInteger(3), NewInteger(4)})))

	value, err = ParseAll([]byte("i3e4:abcd"))
	require.NoError(t, err)
	require.True(t, value.Equal(NewList([]Value{NewInteger(3), NewText("abcd")})))
}

func TestParseAll_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseAll([]byte("i3ei4eabc"))
	require.ErrorIs(t, err, ErrTrailingBytes)

	// a truncated value surfaces as incomplete, not as trailing bytes
	_, err = ParseAll([]byte("i3e4:ab"))
	require.ErrorIs(t, err, ErrIncompleteInput)
	require.NotErrorIs(t, err, ErrTrailingBytes)
}

func TestParseAllowTrailing(t *testing.T) {
	t.Parallel()

	value, rest := ParseAllowTrailing([]byte("i3ei4eabc"))
	require.Equal(t, []byte("abc"), rest)
	require.True(t, value.Equal(NewList([]Value{NewInteger(3), NewInteger(4)})))

	value, rest = ParseAllowTrailing([]byte("abc"))
	require.Equal(t, []byte("abc"), rest)
	require.True(t, value.IsEmpty())

	value, rest = ParseAllowTrailing([]byte("i3e"))
	require.Empty(t, rest)
	require.True(t, value.Equal(NewInteger(3)))
}

func TestParse_UnexpectedFirstByte(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]byte("x"))
	require.ErrorIs(t, err, ErrUnexpectedByte)

	_, _, err = Parse([]byte("e:"))
	require.ErrorIs(t, err, ErrUnexpectedByte)
}

func TestParse_EmptyInput(t *testing.T) {
	t.Parallel()

	_, _, err := Parse(nil)
	require.ErrorIs(t, err, ErrIncompleteInput)
}
