package validator

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"
	"unicode"

	"domainwatch/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout = 5 * time.Second
	defaultTLSPort = 443
)

// Resolver resolves host names. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DialContextFunc opens a network connection, like net.Dialer.DialContext.
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configure the default Validator.
type Options struct {
	// CheckDNS requires every domain to resolve.
	CheckDNS bool
	// CheckTLS requires every domain to complete a TLS handshake on TLSPort
	// and present a certificate. The certificate is not verified.
	CheckTLS bool
	// Timeout bounds each network check. Zero means 5s.
	Timeout time.Duration
	// TLSPort is the port probed by CheckTLS. Zero means 443.
	TLSPort int
	// Resolver is used by CheckDNS. Nil means net.DefaultResolver.
	Resolver Resolver
	// DialContext is used by CheckTLS. Nil means a plain net.Dialer.
	DialContext DialContextFunc
}

type domains struct {
	options Options
}

// New returns the default Validator. Syntax checks always run; network
// checks run when enabled in options.
func New(options Options) Validator {
	if options.Timeout <= 0 {
		options.Timeout = defaultTimeout
	}
	if options.TLSPort <= 0 {
		options.TLSPort = defaultTLSPort
	}
	if options.Resolver == nil {
		options.Resolver = net.DefaultResolver
	}
	if options.DialContext == nil {
		options.DialContext = (&net.Dialer{}).DialContext
	}

	return &domains{options: options}
}

// ValidateDomains checks every domain in input. Domains are separated by
// commas or whitespace; each one stops at its first failing check.
func (v *domains) ValidateDomains(ctx context.Context, input string) Report {
	names := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(names) == 0 {
		return Report{Errors: []string{"Domain is empty."}}
	}

	var report Report
	for _, name := range names {
		if msg := v.validate(ctx, name); msg != "" {
			logger.Debug(ctx, "domain rejected", zap.String("domain", name), zap.String("reason", msg))
			report.Errors = append(report.Errors, msg)
		}
	}

	return report
}

// validate returns the message for the first failing check, or "".
func (v *domains) validate(ctx context.Context, name string) string {
	escaped := html.EscapeString(name)

	ascii, err := idna.Lookup.ToASCII(strings.TrimSuffix(name, "."))
	if err != nil || ascii == "" {
		return fmt.Sprintf("Invalid domain: %s.", escaped)
	}
	if !isRegistrable(ascii) {
		return fmt.Sprintf("Invalid domain: %s.", escaped)
	}

	if v.options.CheckDNS {
		if err := v.resolve(ctx, ascii); err != nil {
			logger.Debug(ctx, "could not resolve domain", zap.String("domain", ascii), zap.Error(err))

			return fmt.Sprintf("Can't resolve %s.", escaped)
		}
	}

	if v.options.CheckTLS {
		if err := v.probeTLS(ctx, ascii); err != nil {
			logger.Debug(ctx, "could not probe domain", zap.String("domain", ascii), zap.Error(err))

			return fmt.Sprintf("Can't connect to %s on port %d.", escaped, v.options.TLSPort)
		}
	}

	return ""
}

// isRegistrable rejects IP literals, single-label names and bare public
// suffixes such as "co.uk".
func isRegistrable(name string) bool {
	if _, err := netip.ParseAddr(name); err == nil {
		return false
	}
	if !strings.Contains(name, ".") {
		return false
	}
	_, err := publicsuffix.EffectiveTLDPlusOne(name)

	return err == nil
}

func (v *domains) resolve(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, v.options.Timeout)
	defer cancel()

	addrs, err := v.options.Resolver.LookupHost(ctx, name)
	if err != nil {
		return fmt.Errorf("could not lookup host: %w", err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("no addresses for %s", name)
	}

	return nil
}

func (v *domains) probeTLS(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, v.options.Timeout)
	defer cancel()

	conn, err := v.options.DialContext(ctx, "tcp", net.JoinHostPort(name, strconv.Itoa(v.options.TLSPort)))
	if err != nil {
		return fmt.Errorf("could not dial: %w", err)
	}
	defer conn.Close()

	client := tls.Client(conn, &tls.Config{
		ServerName:         name,
		InsecureSkipVerify: true, //nolint: gosec
	})
	if err := client.HandshakeContext(ctx); err != nil {
		return fmt.Errorf("could not complete handshake: %w", err)
	}
	if len(client.ConnectionState().PeerCertificates) == 0 {
		return fmt.Errorf("no certificate presented")
	}

	return nil
}
