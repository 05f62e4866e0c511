package model

import "net/http"

// Bucket is the classification of a single outcome.
type Bucket int

const (
	// BucketException holds every failure, whatever its kind.
	BucketException Bucket = iota

	// BucketOK holds 200 responses.
	BucketOK

	// BucketRedirect holds 301 and 302 responses.
	BucketRedirect

	// BucketForbidden holds 403 responses.
	BucketForbidden

	// BucketNotFound holds 404 responses.
	BucketNotFound

	// BucketUnclassified holds every other status code.
	BucketUnclassified
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{
	BucketOK,
	BucketRedirect,
	BucketForbidden,
	BucketNotFound,
	BucketUnclassified,
	BucketException,
}

// String returns the bucket name used in JSON and Markdown output.
func (b Bucket) String() string {
	switch b {
	case BucketException:
		return "exception"
	case BucketOK:
		return "ok"
	case BucketRedirect:
		return "redirect"
	case BucketForbidden:
		return "forbidden"
	case BucketNotFound:
		return "not-found"
	case BucketUnclassified:
		return "unclassified"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Bucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Classification is the result of Classify: the bucket plus everything a
// layout needs to render the line.
type Classification struct {
	Bucket Bucket

	// StatusCode is 0 for failures.
	StatusCode int

	// StatusMessage is the upper-cased reason phrase. It is empty for
	// failures and for codes without a registered phrase.
	StatusMessage string

	// Location is the redirect target. HasLocation is false when a redirect
	// arrived without a Location header.
	Location    string
	HasLocation bool

	// Message is the failure message for the exception bucket.
	Message string
}

// MissingTarget reports whether this is a redirect without a Location header.
func (c Classification) MissingTarget() bool {
	return c.Bucket == BucketRedirect && !c.HasLocation
}

// Classify maps an outcome to its bucket. It never fails: an unknown reason
// phrase degrades to an empty StatusMessage.
func Classify(o Outcome) Classification {
	if o.IsFailure() {
		return Classification{Bucket: BucketException, Message: o.Message()}
	}

	c := Classification{StatusCode: o.StatusCode()}
	if msg, err := StatusMessage(c.StatusCode); err == nil {
		c.StatusMessage = msg
	}

	switch c.StatusCode {
	case http.StatusOK:
		c.Bucket = BucketOK
	case http.StatusMovedPermanently, http.StatusFound:
		c.Bucket = BucketRedirect
		c.Location, c.HasLocation = o.Location()
	case http.StatusForbidden:
		c.Bucket = BucketForbidden
	case http.StatusNotFound:
		c.Bucket = BucketNotFound
	default:
		c.Bucket = BucketUnclassified
	}
	return c
}
