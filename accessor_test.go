package xdb

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneRow builds a single-row table with one column of the given tag.
func oneRow(t *testing.T, tag DbType, v any) *Row {
	t.Helper()
	tbl := NewTable(Col("Column1", tag))
	r, err := tbl.AddRow(v)
	require.NoError(t, err)
	return r
}

func TestGetUInt16OrDefault_StoredUInt16(t *testing.T) {
	t.Parallel()

	r := oneRow(t, TypeUInt16, uint16(45))
	got, err := GetUInt16OrDefault(r, "Column1")
	require.NoError(t, err)
	assert.Equal(t, uint16(45), got)
}

func TestGetInt16OrDefault_OverflowYieldsDefault(t *testing.T) {
	t.Parallel()

	r := oneRow(t, TypeInt32, int32(math.MaxInt16+1))

	got, err := GetInt16OrDefault(r, "Column1")
	require.NoError(t, err)
	assert.Equal(t, int16(0), got)

	got, err = GetInt16OrDefault(r, "Column1", -7)
	require.NoError(t, err)
	assert.Equal(t, int16(-7), got)

	v, ok := TryGetInt16(r, "Column1")
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestGetBooleanOrDefault_YesNo(t *testing.T) {
	t.Parallel()

	r := oneRow(t, TypeString, "Yes")
	got, err := GetBooleanOrDefault(r, "Column1")
	require.NoError(t, err)
	assert.True(t, got)

	tests := []struct {
		in     any
		want   bool
		wantOK bool
	}{
		{"Yes", true, true},
		{"No", false, true},
		{"true", true, true},
		{"FALSE", false, true},
		{"1", true, true},
		{int64(0), false, true},
		{"yes", false, false},
		{" Yes", false, false},
		{"maybe", false, false},
		{1.5, false, false},
	}
	for _, tc := range tests {
		got, ok := TryGetBoolean(Fields{"c": tc.in}, "c")
		assert.Equal(t, tc.wantOK, ok, "%#v", tc.in)
		assert.Equal(t, tc.want, got, "%#v", tc.in)
	}
}

func TestGetInt32OrDefault_UnparsableText(t *testing.T) {
	t.Parallel()

	r := oneRow(t, TypeString, "Bad")

	got, err := GetInt32OrDefault(r, "Column1")
	require.NoError(t, err)
	assert.Equal(t, int32(0), got)

	v, ok := TryGetInt32(r, "Column1")
	assert.False(t, ok)
	assert.Equal(t, int32(0), v)
}

func TestAccessor_ArgumentErrors(t *testing.T) {
	t.Parallel()

	src := Fields{"Column1": "x"}

	_, err := GetStringOrDefault(nil, "Column1")
	require.ErrorIs(t, err, ErrArgumentNull)

	var nilRow *Row
	_, err = GetStringOrDefault(nilRow, "Column1")
	require.ErrorIs(t, err, ErrArgumentNull)

	_, err = GetStringOrDefault(src, "")
	require.ErrorIs(t, err, ErrArgumentInvalid)

	_, err = GetStringOrDefault(src, "Column2")
	require.ErrorIs(t, err, ErrArgumentInvalid)

	// A default never masks an argument error.
	got, err := GetInt32OrDefault(src, "Column2", 9)
	require.ErrorIs(t, err, ErrArgumentInvalid)
	assert.Zero(t, got)

	_, ok := TryGetString(nil, "Column1")
	assert.False(t, ok)
	_, ok = TryGetString(src, "")
	assert.False(t, ok)
	_, ok = TryGetString(src, "Column2")
	assert.False(t, ok)
}

func TestAccessor_MissingFieldIsArgumentErrorForEveryType(t *testing.T) {
	t.Parallel()

	src := Fields{"present": int32(1)}
	calls := map[string]func() error{
		"SByte":    func() error { _, err := GetSByteOrDefault(src, "absent"); return err },
		"Int16":    func() error { _, err := GetInt16OrDefault(src, "absent"); return err },
		"Int32":    func() error { _, err := GetInt32OrDefault(src, "absent"); return err },
		"Int64":    func() error { _, err := GetInt64OrDefault(src, "absent"); return err },
		"Byte":     func() error { _, err := GetByteOrDefault(src, "absent"); return err },
		"UInt16":   func() error { _, err := GetUInt16OrDefault(src, "absent"); return err },
		"UInt32":   func() error { _, err := GetUInt32OrDefault(src, "absent"); return err },
		"UInt64":   func() error { _, err := GetUInt64OrDefault(src, "absent"); return err },
		"Single":   func() error { _, err := GetSingleOrDefault(src, "absent"); return err },
		"Double":   func() error { _, err := GetDoubleOrDefault(src, "absent"); return err },
		"Decimal":  func() error { _, err := GetDecimalOrDefault(src, "absent"); return err },
		"Boolean":  func() error { _, err := GetBooleanOrDefault(src, "absent"); return err },
		"Char":     func() error { _, err := GetCharOrDefault(src, "absent"); return err },
		"String":   func() error { _, err := GetStringOrDefault(src, "absent"); return err },
		"Date":     func() error { _, err := GetDateOrDefault(src, "absent"); return err },
		"DateTime": func() error { _, err := GetDateTimeOrDefault(src, "absent"); return err },
		"Guid":     func() error { _, err := GetGuidOrDefault(src, "absent"); return err },
	}
	for name, call := range calls {
		assert.ErrorIs(t, call(), ErrArgumentInvalid, name)
	}

	tries := map[string]func() bool{
		"SByte":    func() bool { _, ok := TryGetSByte(src, "absent"); return ok },
		"UInt64":   func() bool { _, ok := TryGetUInt64(src, "absent"); return ok },
		"Single":   func() bool { _, ok := TryGetSingle(src, "absent"); return ok },
		"Decimal":  func() bool { _, ok := TryGetDecimal(src, "absent"); return ok },
		"Char":     func() bool { _, ok := TryGetChar(src, "absent"); return ok },
		"Date":     func() bool { _, ok := TryGetDate(src, "absent"); return ok },
		"DateTime": func() bool { _, ok := TryGetDateTime(src, "absent"); return ok },
		"Guid":     func() bool { _, ok := TryGetGuid(src, "absent"); return ok },
	}
	for name, try := range tries {
		assert.False(t, try(), name)
	}
}

func assertNullYieldsDefault[T Value](t *testing.T, src FieldSource, def T) {
	t.Helper()

	got, err := GetOrDefault(src, "n", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	got, err = GetOrDefault[T](src, "n")
	require.NoError(t, err)
	var zero T
	assert.Equal(t, zero, got)

	got, ok := TryGet[T](src, "n")
	assert.True(t, ok, "null reads as a successful default")
	assert.Equal(t, zero, got)
}

func TestAccessor_NullYieldsDefault(t *testing.T) {
	t.Parallel()

	var nilInt *int64
	sources := map[string]FieldSource{
		"nil":            Fields{"n": nil},
		"nil pointer":    Fields{"n": nilInt},
		"sql.NullInt32":  Fields{"n": sql.NullInt32{}},
		"sql.Null[uuid]": Fields{"n": sql.Null[uuid.UUID]{}},
		"typed column":   oneRowNamed(t, "n", TypeInt32, nil),
		"string column":  oneRowNamed(t, "n", TypeString, sql.NullString{}),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			assertNullYieldsDefault(t, src, int8(-3))
			assertNullYieldsDefault(t, src, int16(-3))
			assertNullYieldsDefault(t, src, int32(-3))
			assertNullYieldsDefault(t, src, int64(-3))
			assertNullYieldsDefault(t, src, uint8(3))
			assertNullYieldsDefault(t, src, uint16(3))
			assertNullYieldsDefault(t, src, uint32(3))
			assertNullYieldsDefault(t, src, uint64(3))
			assertNullYieldsDefault(t, src, float32(1.5))
			assertNullYieldsDefault(t, src, 2.5)
			assertNullYieldsDefault(t, src, decimal.RequireFromString("9.75"))
			assertNullYieldsDefault(t, src, true)
			assertNullYieldsDefault(t, src, "fallback")
			assertNullYieldsDefault(t, src, NewDate(2020, 2, 29))
			assertNullYieldsDefault(t, src, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC))
			assertNullYieldsDefault(t, src, uuid.Must(uuid.FromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8")))

			c, err := GetCharOrDefault(src, "n", 'z')
			require.NoError(t, err)
			assert.Equal(t, 'z', c)
		})
	}
}

func oneRowNamed(t *testing.T, name string, tag DbType, v any) *Row {
	t.Helper()
	tbl := NewTable(Col(name, tag))
	r, err := tbl.AddRow(v)
	require.NoError(t, err)
	return r
}

func TestAccessor_NumericNarrowing(t *testing.T) {
	t.Parallel()

	type check struct {
		stored any
		get    func(FieldSource) (any, bool)
		want   any // nil means the value does not fit
	}
	i8 := func(s FieldSource) (any, bool) { return TryGetSByte(s, "v") }
	i16 := func(s FieldSource) (any, bool) { return TryGetInt16(s, "v") }
	i32 := func(s FieldSource) (any, bool) { return TryGetInt32(s, "v") }
	i64 := func(s FieldSource) (any, bool) { return TryGetInt64(s, "v") }
	u8 := func(s FieldSource) (any, bool) { return TryGetByte(s, "v") }
	u16 := func(s FieldSource) (any, bool) { return TryGetUInt16(s, "v") }
	u32 := func(s FieldSource) (any, bool) { return TryGetUInt32(s, "v") }
	u64 := func(s FieldSource) (any, bool) { return TryGetUInt64(s, "v") }
	f32 := func(s FieldSource) (any, bool) { return TryGetSingle(s, "v") }
	f64 := func(s FieldSource) (any, bool) { return TryGetDouble(s, "v") }

	tests := []check{
		// widening always succeeds
		{int8(-5), i64, int64(-5)},
		{uint8(200), u64, uint64(200)},
		{uint16(45), i32, int32(45)},
		{int32(7), f64, float64(7)},
		{float32(0.5), f64, float64(0.5)},

		// signed narrowing at the edges
		{int32(math.MaxInt16), i16, int16(math.MaxInt16)},
		{int32(math.MaxInt16 + 1), i16, nil},
		{int32(math.MinInt16), i16, int16(math.MinInt16)},
		{int32(math.MinInt16 - 1), i16, nil},
		{int64(127), i8, int8(127)},
		{int64(128), i8, nil},
		{int64(math.MaxInt32 + 1), i32, nil},

		// sign changes
		{int64(-1), u8, nil},
		{int16(-1), u64, nil},
		{uint64(math.MaxUint64), i64, nil},
		{uint64(math.MaxInt64), i64, int64(math.MaxInt64)},
		{uint32(math.MaxUint32), u16, nil},
		{uint32(65535), u16, uint16(65535)},
		{int64(math.MaxUint32), u32, uint32(math.MaxUint32)},

		// fractional values never become integers
		{1.5, i32, nil},
		{2.0, i32, int32(2)},
		{float32(-3), i8, int8(-3)},
		{decimal.RequireFromString("255"), u8, uint8(255)},
		{decimal.RequireFromString("256"), u8, nil},
		{decimal.RequireFromString("0.25"), i64, nil},
		{1e19, u64, uint64(1e19)},
		{1e20, u64, nil},

		// float range
		{1e39, f32, nil},
		{-1e39, f32, nil},
		{123.25, f32, float32(123.25)},
		{decimal.RequireFromString("1.25"), f32, float32(1.25)},

		// text parses invariantly
		{"  42 ", i32, int32(42)},
		{"18446744073709551615", u64, uint64(math.MaxUint64)},
		{"-1", u16, nil},
		{"1e3", i32, nil},
		{"1e3", f64, float64(1000)},
	}
	for _, tc := range tests {
		src := Fields{"v": tc.stored}
		got, ok := tc.get(src)
		if tc.want == nil {
			assert.False(t, ok, "%T(%v) should not fit", tc.stored, tc.stored)
			continue
		}
		if assert.True(t, ok, "%T(%v) should fit", tc.stored, tc.stored) {
			assert.Equal(t, tc.want, got, "%T(%v)", tc.stored, tc.stored)
		}
	}
}

func TestGetOrDefault_OverflowMatchesNull(t *testing.T) {
	t.Parallel()

	src := Fields{"big": int64(1 << 40), "null": nil}

	big, err := GetInt32OrDefault(src, "big", 11)
	require.NoError(t, err)
	null, err := GetInt32OrDefault(src, "null", 11)
	require.NoError(t, err)
	assert.Equal(t, big, null)

	_, okBig := TryGetInt32(src, "big")
	_, okNull := TryGetInt32(src, "null")
	assert.False(t, okBig)
	assert.True(t, okNull)
}

func TestGetStringOrDefault_DisplayForms(t *testing.T) {
	t.Parallel()

	id := uuid.Must(uuid.FromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	tests := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{int32(5), "5"},
		{uint64(math.MaxUint64), "18446744073709551615"},
		{0.1, "0.1"},
		{float32(0.1), "0.1"},
		{true, "true"},
		{[]byte("raw"), "raw"},
		{[]rune("runes"), "runes"},
		{decimal.RequireFromString("1.50"), "1.5"},
		{id, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{NewDate(2024, 3, 5), "2024-03-05"},
		{time.Date(2024, 3, 5, 10, 11, 12, 0, time.UTC), "2024-03-05T10:11:12Z"},
	}
	for _, tc := range tests {
		got, err := GetStringOrDefault(Fields{"v": tc.in}, "v", "unused")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%T", tc.in)

		s, ok := TryGetString(Fields{"v": tc.in}, "v")
		assert.True(t, ok)
		assert.Equal(t, tc.want, s)
	}
}

func TestTryGetChar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     any
		want   rune
		wantOK bool
	}{
		{"A", 'A', true},
		{"é", 'é', true},
		{'x', 'x', true},
		{int64(66), 'B', true},
		{uint8(67), 'C', true},
		{"", 0, false},
		{"AB", 0, false},
		{[]byte{0xff}, 0, false},
		{int64(-1), 0, false},
		{int64(0x110000), 0, false},
		{1.5, 0, false},
	}
	for _, tc := range tests {
		got, ok := TryGetChar(Fields{"c": tc.in}, "c")
		assert.Equal(t, tc.wantOK, ok, "%#v", tc.in)
		assert.Equal(t, tc.want, got, "%#v", tc.in)
	}
}

func TestAccessor_Decimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{"12.50", "12.5"},
		{int16(-4), "-4"},
		{uint64(math.MaxUint64), "18446744073709551615"},
		{float32(0.1), "0.1"},
		{0.25, "0.25"},
		{NewCurrency(decimal.RequireFromString("3.14159")), "3.1416"},
	}
	for _, tc := range tests {
		d, ok := TryGetDecimal(Fields{"d": tc.in}, "d")
		require.True(t, ok, "%#v", tc.in)
		assert.Equal(t, tc.want, d.String())
	}

	for _, bad := range []any{math.NaN(), math.Inf(1), "ten"} {
		_, ok := TryGetDecimal(Fields{"d": bad}, "d")
		assert.False(t, ok, "%#v", bad)
	}
}

func TestAccessor_DateAndTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 5, 10, 11, 12, 0, time.UTC)
	src := Fields{
		"date":     "2024-03-05",
		"stamp":    "2024-03-05 10:11:12",
		"iso":      "2024-03-05T10:11:12Z",
		"time":     ts,
		"dto":      NewDateTimeOffset(ts.In(time.FixedZone("", 2*3600))),
		"bad":      "05/03/2024",
		"asDate":   NewDate(2024, 3, 5),
		"asString": []byte("2024-03-05T10:11:12.5+01:00"),
	}

	d, ok := TryGetDate(src, "date")
	require.True(t, ok)
	assert.Equal(t, NewDate(2024, 3, 5), d)

	d, ok = TryGetDate(src, "time")
	require.True(t, ok)
	assert.Equal(t, NewDate(2024, 3, 5), d)

	d, ok = TryGetDate(src, "asDate")
	require.True(t, ok)
	assert.Equal(t, NewDate(2024, 3, 5), d)

	got, ok := TryGetDateTime(src, "stamp")
	require.True(t, ok)
	assert.True(t, ts.Equal(got))

	got, ok = TryGetDateTime(src, "iso")
	require.True(t, ok)
	assert.True(t, ts.Equal(got))

	got, ok = TryGetDateTime(src, "dto")
	require.True(t, ok)
	assert.True(t, ts.Equal(got))

	got, ok = TryGetDateTime(src, "asString")
	require.True(t, ok)
	assert.True(t, time.Date(2024, 3, 5, 9, 11, 12, 5e8, time.UTC).Equal(got))

	_, ok = TryGetDateTime(src, "bad")
	assert.False(t, ok)
	_, ok = TryGetDate(src, "bad")
	assert.False(t, ok)

	def := time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)
	v, err := GetDateTimeOrDefault(src, "bad", def)
	require.NoError(t, err)
	assert.Equal(t, def, v)
}

func TestAccessor_Guid(t *testing.T) {
	t.Parallel()

	want := uuid.Must(uuid.FromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	src := Fields{
		"uuid":   want,
		"text":   " 6ba7b810-9dad-11d1-80b4-00c04fd430c8 ",
		"braced": "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}",
		"bad":    "not-a-guid",
		"num":    int64(1),
	}
	for _, name := range []string{"uuid", "text", "braced"} {
		got, ok := TryGetGuid(src, name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	for _, name := range []string{"bad", "num"} {
		got, err := GetGuidOrDefault(src, name, want)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)

		_, ok := TryGetGuid(src, name)
		assert.False(t, ok, name)
	}
}

func TestAccessor_CaseInsensitiveNames(t *testing.T) {
	t.Parallel()

	tbl := NewTable(Col("UserID", TypeInt64), Col("Straße", TypeString))
	r, err := tbl.AddRow(int64(12), "x")
	require.NoError(t, err)

	id, err := GetInt64OrDefault(r, "userid")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	s, ok := TryGetString(r, "STRASSE")
	assert.False(t, ok, "case folding does not expand ß")
	assert.Empty(t, s)

	s, ok = TryGetString(r, "STRAßE")
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	v, ok := TryGetInt32(Fields{"Qty": int64(3)}, "QTY")
	assert.True(t, ok)
	assert.Equal(t, int32(3), v)
}

func TestFields_CaseCollisions(t *testing.T) {
	t.Parallel()

	src := Fields{"name": "a", "NAME": "b", "Name": "c"}
	for range 50 {
		f, ok := src.Field("nAmE")
		require.True(t, ok)
		assert.Equal(t, "NAME", f.Name)
		assert.Equal(t, "b", f.Value)
	}

	s, err := GetStringOrDefault(src, "Name")
	require.NoError(t, err)
	assert.Equal(t, "c", s, "exact key wins")
}
