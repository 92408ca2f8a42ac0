package usecase

import (
	"context"
	"net"
	"regexp"
	"strings"
	"time"
)

type EmailVerdict string

const (
	VerdictValid                EmailVerdict = "valid"
	VerdictPlaceholder          EmailVerdict = "placeholder"
	VerdictDisposableProvider   EmailVerdict = "disposableProvider"
	VerdictTestDomain           EmailVerdict = "testDomain"
	VerdictSyntacticallyInvalid EmailVerdict = "syntacticallyInvalid"
	VerdictNoMailExchanger      EmailVerdict = "noMailExchanger"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RFC 2606 reserved names plus domains that only ever show up in test data.
var testDomains = map[string]bool{
	"example.com": true,
	"example.org": true,
	"example.net": true,
	"test.com":    true,
	"test.local":  true,
	"invalid.com": true,
	"fake.com":    true,
	"dummy.com":   true,
	"sample.com":  true,
}

// Throwaway providers. Accepting these produces bounces and spam traps.
var disposableProviders = map[string]bool{
	"tempmail.com":           true,
	"10minutemail.com":       true,
	"guerrillamail.com":      true,
	"mailinator.com":         true,
	"throwaway.email":        true,
	"getnada.com":            true,
	"mohmal.com":             true,
	"yopmail.com":            true,
	"maildrop.cc":            true,
	"trashmail.com":          true,
	"temp-mail.org":          true,
	"mailnesia.com":          true,
	"mintemail.com":          true,
	"sharklasers.com":        true,
	"grr.la":                 true,
	"guerrillamailblock.com": true,
}

var placeholderLocalParts = map[string]bool{
	"test":        true,
	"example":     true,
	"sample":      true,
	"placeholder": true,
	"noreply":     true,
	"no-reply":    true,
	"donotreply":  true,
	"yourname":    true,
	"your-email":  true,
	"email":       true,
}

// Generic numbered mail hosts (mail1., smtp2., mx3.) usually mean a
// parked or abandoned domain that accepts anything.
var catchAllMXPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^mail\d+\.`),
	regexp.MustCompile(`(?i)^smtp\d+\.`),
	regexp.MustCompile(`(?i)^mx\d+\.`),
}

type MXResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

type netResolver struct {
	r *net.Resolver
}

func (n netResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return n.r.LookupMX(ctx, domain)
}

func DefaultMXResolver() MXResolver {
	return netResolver{r: net.DefaultResolver}
}

// EmailGate classifies candidate addresses before they can become leads.
// Static checks are pure; the MX lookup is retried with backoff and a
// persistent DNS failure is reported as noMailExchanger, never as valid.
type EmailGate struct {
	Resolver      MXResolver
	LookupRetries int
	RetryBackoff  time.Duration
	LookupTimeout time.Duration
}

func NewEmailGate(resolver MXResolver) *EmailGate {
	return &EmailGate{
		Resolver:      resolver,
		LookupRetries: 2,
		RetryBackoff:  500 * time.Millisecond,
		LookupTimeout: 5 * time.Second,
	}
}

func (g *EmailGate) Check(ctx context.Context, email string) EmailVerdict {
	email = strings.ToLower(strings.TrimSpace(email))

	if !emailRegex.MatchString(email) {
		return VerdictSyntacticallyInvalid
	}

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]

	if placeholderLocalParts[local] {
		return VerdictPlaceholder
	}
	if testDomains[domain] {
		return VerdictTestDomain
	}
	if disposableProviders[domain] {
		return VerdictDisposableProvider
	}

	return g.checkMX(ctx, domain)
}

func (g *EmailGate) checkMX(ctx context.Context, domain string) EmailVerdict {
	for attempt := 0; attempt <= g.LookupRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return VerdictNoMailExchanger
			case <-time.After(g.RetryBackoff * time.Duration(attempt)):
			}
		}

		lookupCtx, cancel := context.WithTimeout(ctx, g.LookupTimeout)
		records, err := g.Resolver.LookupMX(lookupCtx, domain)
		cancel()
		if err != nil {
			continue
		}
		if len(records) == 0 {
			return VerdictNoMailExchanger
		}
		for _, mx := range records {
			for _, pattern := range catchAllMXPatterns {
				if pattern.MatchString(mx.Host) {
					// Catch-all servers accept any address, so a
					// positive lookup proves nothing.
					return VerdictNoMailExchanger
				}
			}
		}
		return VerdictValid
	}

	return VerdictNoMailExchanger
}
