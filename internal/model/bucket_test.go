package model

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		outcome     Outcome
		wantBucket  Bucket
		wantMessage string
	}{
		{name: "200 is ok", outcome: NewSuccess(200, nil), wantBucket: BucketOK, wantMessage: "OK"},
		{name: "301 is redirect", outcome: NewSuccess(301, nil), wantBucket: BucketRedirect, wantMessage: "MOVED PERMANENTLY"},
		{name: "302 is redirect", outcome: NewSuccess(302, nil), wantBucket: BucketRedirect, wantMessage: "FOUND"},
		{name: "403 is forbidden", outcome: NewSuccess(403, nil), wantBucket: BucketForbidden, wantMessage: "FORBIDDEN"},
		{name: "404 is not found", outcome: NewSuccess(404, nil), wantBucket: BucketNotFound, wantMessage: "NOT FOUND"},
		{name: "500 is unclassified", outcome: NewSuccess(500, nil), wantBucket: BucketUnclassified, wantMessage: "INTERNAL SERVER ERROR"},
		{name: "307 is unclassified", outcome: NewSuccess(307, nil), wantBucket: BucketUnclassified, wantMessage: "TEMPORARY REDIRECT"},
		{name: "unknown code degrades to empty message", outcome: NewSuccess(799, nil), wantBucket: BucketUnclassified},
		{name: "connection error", outcome: NewFailure(ConnectionError, "dial tcp: refused"), wantBucket: BucketException},
		{name: "certificate error", outcome: NewFailure(CertificateError, "x509: bad"), wantBucket: BucketException},
		{name: "timeout", outcome: NewTimeout(), wantBucket: BucketException},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Classify(tt.outcome)
			if c.Bucket != tt.wantBucket {
				t.Errorf("expected bucket %s, got %s", tt.wantBucket, c.Bucket)
			}
			if c.StatusMessage != tt.wantMessage {
				t.Errorf("expected status message %q, got %q", tt.wantMessage, c.StatusMessage)
			}
		})
	}
}

func TestClassifyRedirectTarget(t *testing.T) {
	t.Parallel()

	t.Run("location is surfaced", func(t *testing.T) {
		t.Parallel()

		for _, code := range []int{301, 302} {
			c := Classify(NewSuccess(code, map[string]string{"Location": "https://x"}))
			if c.Location != "https://x" || !c.HasLocation {
				t.Errorf("%d: expected location https://x, got %q", code, c.Location)
			}
			if c.MissingTarget() {
				t.Errorf("%d: did not expect missing target", code)
			}
		}
	})

	t.Run("missing location does not fail", func(t *testing.T) {
		t.Parallel()

		c := Classify(NewSuccess(301, map[string]string{"Server": "nginx"}))
		if c.Bucket != BucketRedirect {
			t.Fatalf("expected redirect, got %s", c.Bucket)
		}
		if !c.MissingTarget() {
			t.Error("expected missing target")
		}
	})

	t.Run("failure message is kept", func(t *testing.T) {
		t.Parallel()

		c := Classify(NewFailure(CertificateError, "x509: certificate signed by unknown authority"))
		if c.Message != "x509: certificate signed by unknown authority" {
			t.Errorf("unexpected message %q", c.Message)
		}
	})
}

func TestStatusMessage(t *testing.T) {
	t.Parallel()

	msg, err := StatusMessage(404)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "NOT FOUND" {
		t.Errorf("expected NOT FOUND, got %q", msg)
	}

	_, err = StatusMessage(999)
	if !errors.Is(err, ErrUnknownStatusCode) {
		t.Errorf("expected ErrUnknownStatusCode, got %v", err)
	}
}

func TestBucketString(t *testing.T) {
	t.Parallel()

	want := map[Bucket]string{
		BucketOK:           "ok",
		BucketRedirect:     "redirect",
		BucketForbidden:    "forbidden",
		BucketNotFound:     "not-found",
		BucketUnclassified: "unclassified",
		BucketException:    "exception",
		Bucket(42):         "unknown",
	}
	for b, s := range want {
		if b.String() != s {
			t.Errorf("Bucket(%d).String() = %q, want %q", b, b.String(), s)
		}
	}
	if len(Buckets) != 6 {
		t.Errorf("expected 6 buckets, got %d", len(Buckets))
	}
}
