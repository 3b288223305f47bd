package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEncodeDecodeRoundTrip(t *testing.T) {
	v := New(
		Record{Service: "github", Username: strPtr("alice"), Secret: "s3cr3t"},
		Record{Service: "mail", Username: nil, Secret: "pw"},
		Record{Service: "empty-user", Username: strPtr(""), Secret: ""},
		Record{Service: "unicode ✓", Username: strPtr("ünï"), Secret: "\"quoted\"\n\ttab"},
		Record{Service: "github", Username: strPtr("bob"), Secret: "dup"},
	)

	b, err := Encode(v)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, v.List(), got.List())

	r, _ := got.Find("mail")
	assert.Nil(t, r.Username, "absent username must stay absent")
	r, _ = got.Find("empty-user")
	require.NotNil(t, r.Username, "empty username must stay present")
	assert.Equal(t, "", *r.Username)
}

func TestEncodeCanonical(t *testing.T) {
	v := New(Record{Service: "github", Username: strPtr("alice"), Secret: "s3cr3t"}, Record{Service: "mail", Secret: "pw"})
	b1, err := Encode(v)
	require.NoError(t, err)
	b2, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)

	want := `{
  "passwords": [
    {
      "service": "github",
      "username": "alice",
      "password": "s3cr3t"
    },
    {
      "service": "mail",
      "username": null,
      "password": "pw"
    }
  ]
}`
	assert.Equal(t, want, string(b1))
}

func TestEncodeRejectsInvalidUTF8(t *testing.T) {
	cases := map[string]Record{
		"Secret":   {Service: "svc", Secret: "ab\xffcd"},
		"Service":  {Service: "s\xc3", Secret: "pw"},
		"Username": {Service: "svc", Username: strPtr("\xfe"), Secret: "pw"},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := Encode(New(r))
			require.Error(t, err)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, ErrMalformedVault)
		})
	}
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	b, err := Encode(New(Record{Service: "<a&b>", Secret: "x<y>&z"}))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"service": "<a&b>"`)
	assert.Contains(t, string(b), `"password": "x<y>&z"`)
	assert.NotContains(t, string(b), `\u003c`)

	got, err := Decode(b)
	require.NoError(t, err)
	r, ok := got.Find("<a&b>")
	require.True(t, ok)
	assert.Equal(t, "x<y>&z", r.Secret)
}

func TestEncodeEmpty(t *testing.T) {
	b, err := Encode(New())
	require.NoError(t, err)
	assert.JSONEq(t, `{"passwords":[]}`, string(b))

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestDecodeOriginalFormat(t *testing.T) {
	in := `{"passwords":[{"service":"github","username":null,"password":"x"},{"service":"a","username":"u","password":"y","extra":1}]}`
	v, err := Decode([]byte(in))
	require.NoError(t, err)
	require.Equal(t, 2, v.Len())
	r, _ := v.Find("a")
	assert.Equal(t, "u", r.UsernameOr(""))
}

func TestDecodeMissingUsernameIsAbsent(t *testing.T) {
	v, err := Decode([]byte(`{"passwords":[{"service":"s","password":"p"}]}`))
	require.NoError(t, err)
	r, ok := v.Find("s")
	require.True(t, ok)
	assert.Nil(t, r.Username)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"NotJSON":         `not json`,
		"Empty":           ``,
		"Truncated":       `{"passwords":[{"service":"s"`,
		"TrailingData":    `{"passwords":[]} {}`,
		"TopLevelArray":   `[]`,
		"TopLevelNull":    `null`,
		"MissingList":     `{}`,
		"NullList":        `{"passwords":null}`,
		"ListNotArray":    `{"passwords":{}}`,
		"MissingService":  `{"passwords":[{"username":"u","password":"p"}]}`,
		"NullService":     `{"passwords":[{"service":null,"password":"p"}]}`,
		"MissingPassword": `{"passwords":[{"service":"s","username":"u"}]}`,
		"NullRecord":      `{"passwords":[null]}`,
		"WrongType":       `{"passwords":[{"service":1,"password":"p"}]}`,
		"InvalidUTF8":     "{\"passwords\":[{\"service\":\"\xff\",\"password\":\"p\"}]}",
		"UpperCaseKeys":   `{"PASSWORDS":[{"SERVICE":"a","Password":"b"}]}`,
		"CaseFoldService": `{"passwords":[{"Service":"a","password":"b"}]}`,
		"CaseFoldSecret":  `{"passwords":[{"service":"a","PASSWORD":"b"}]}`,
		"WrongUserType":   `{"passwords":[{"service":"a","username":7,"password":"b"}]}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedVault)
			assert.Equal(t, KindMalformedVault, KindOf(err))
		})
	}
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte(`{"passwords":[{"service":"s","username":null,"password":"p"}]}`))
	f.Add([]byte(`{"passwords":[]}`))
	f.Add([]byte(`{}`))
	f.Fuzz(func(t *testing.T, b []byte) {
		v, err := Decode(b)
		if err != nil {
			if KindOf(err) != KindMalformedVault {
				t.Fatalf("unexpected kind %v", KindOf(err))
			}
			return
		}
		enc, err := Encode(v)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		again, err := Decode(enc)
		if err != nil {
			t.Fatalf("decode re-encoded: %v", err)
		}
		if len(again.List()) != v.Len() {
			t.Fatal("record count changed")
		}
	})
}
