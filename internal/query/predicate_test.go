package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_SubstringAcrossFields(t *testing.T) {
	g := Any(
		Substring(FieldFirstName, "kam"),
		Substring(FieldLastName, "kam"),
		Substring(FieldEmail, "kam"),
		Substring(FieldPhone, "kam"),
	)

	sql, args, err := g.Compile(1)
	require.NoError(t, err)

	assert.Equal(t,
		`(first_name ILIKE $1 ESCAPE '\' OR last_name ILIKE $2 ESCAPE '\' OR email ILIKE $3 ESCAPE '\' OR phone ILIKE $4 ESCAPE '\')`,
		sql)
	assert.Equal(t, []any{"%kam%", "%kam%", "%kam%", "%kam%"}, args)
}

func TestCompile_ExactAndFold(t *testing.T) {
	g := Any(ExactFold(FieldEmail, "Jean@Example.com"), Exact(FieldPhone, "+237678901234"))

	sql, args, err := g.Compile(3)
	require.NoError(t, err)

	assert.Equal(t, "(lower(email) = lower($3) OR phone = $4)", sql)
	assert.Equal(t, []any{"Jean@Example.com", "+237678901234"}, args)
}

func TestAny_DropsBlankValues(t *testing.T) {
	g := Any(ExactFold(FieldEmail, "  "), Exact(FieldPhone, " +237 "))

	require.Len(t, g.Predicates(), 1)
	assert.Equal(t, "+237", g.Predicates()[0].Value)

	sql, args, err := g.Compile(1)
	require.NoError(t, err)
	assert.Equal(t, "(phone = $1)", sql)
	assert.Equal(t, []any{"+237"}, args)
}

func TestCompile_EmptyGroup(t *testing.T) {
	g := Any()
	assert.True(t, g.Empty())

	sql, args, err := g.Compile(1)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", sql)
	assert.Nil(t, args)
}

func TestCompile_UnknownField(t *testing.T) {
	g := Any(Substring(Field("password_hash"), "x"))

	_, _, err := g.Compile(1)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\x`, EscapeLike(`c:\x`))
}
