package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"

	"github.com/nao1215/certcheck/internal/model"
)

// ErrInvalidArgument is returned by New when the engine cannot be built from
// the given domains, handler or options.
var ErrInvalidArgument = errors.New("invalid argument")

// outcomeFromError converts a failed request into a failure outcome.
func outcomeFromError(err error) model.Outcome {
	if isTimeout(err) {
		return model.NewTimeout()
	}
	if isCertificateError(err) {
		return model.NewFailure(model.CertificateError, errorMessage(err))
	}
	return model.NewFailure(model.ConnectionError, errorMessage(err))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isCertificateError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}

// errorMessage returns the text of err without the `Get "<url>": ` prefix
// added by *url.Error. The URL is already part of the result.
func errorMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}
