package ipld_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ipld/libipld/ipld"
)

func TestDecodeErrorMessageIncludesOffsetWhenTracked(t *testing.T) {
	err := ipld.NewDecodeErrorAt(ipld.NotCanonical, 12, "leading zero")
	msg := err.Error()
	if !strings.Contains(msg, "offset 12") {
		t.Fatalf("Error() = %q, want it to mention the offset", msg)
	}
	if !strings.Contains(msg, string(ipld.NotCanonical)) {
		t.Fatalf("Error() = %q, want it to mention the kind", msg)
	}
}

func TestDecodeErrorMessageOmitsOffsetWhenUntracked(t *testing.T) {
	err := ipld.NewDecodeError(ipld.UnsupportedType, "no offset here")
	if strings.Contains(err.Error(), "offset") {
		t.Fatalf("Error() = %q, want no offset mention", err.Error())
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	inner := errors.New("underlying failure")
	err := &ipld.DecodeError{Kind: ipld.UnexpectedEOF, Offset: -1, Msg: "wrap test", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("errors.Is did not see through DecodeError.Unwrap")
	}
}

func TestEncodeErrorMessage(t *testing.T) {
	err := ipld.NewEncodeError(ipld.FloatNotFinite, "NaN is not allowed")
	msg := err.Error()
	if !strings.Contains(msg, string(ipld.FloatNotFinite)) || !strings.Contains(msg, "NaN is not allowed") {
		t.Fatalf("Error() = %q, want it to mention kind and message", msg)
	}
}
