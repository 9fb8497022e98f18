package protocols

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/linkchecker-go/linkcheck/urlitem"
	"github.com/miekg/dns"
)

// MailtoHandler implements the mailto scheme: validate the address syntax
// with net/mail, then confirm the domain is deliverable by resolving its
// MX records (falling back to the domain's A/AAAA per RFC 5321 when no MX
// is published). Grounded on the teacher's validation-first style; the
// DNS lookup is new domain-stack wiring for github.com/miekg/dns.
type MailtoHandler struct {
	Resolver   string
	DialTimeout time.Duration
}

func NewMailtoHandler(resolver string) *MailtoHandler {
	if resolver == "" {
		resolver = "8.8.8.8:53"
	}
	return &MailtoHandler{Resolver: resolver, DialTimeout: 5 * time.Second}
}

func (h *MailtoHandler) Check(ctx context.Context, item *urlitem.Item) Outcome {
	u, err := url.Parse(item.Canonical)
	if err != nil {
		return errOutcome(urlitem.WarnURLInvalid, err.Error())
	}
	addrSpec := u.Opaque
	if addrSpec == "" {
		addrSpec = strings.TrimPrefix(item.Canonical, "mailto:")
	}
	if idx := strings.Index(addrSpec, "?"); idx != -1 {
		addrSpec = addrSpec[:idx]
	}

	addr, err := mail.ParseAddress(addrSpec)
	if err != nil {
		return errOutcome(urlitem.WarnURLInvalid, "invalid email address: "+err.Error())
	}

	at := strings.LastIndex(addr.Address, "@")
	if at < 0 {
		return errOutcome(urlitem.WarnURLInvalid, "address missing domain")
	}
	domain := addr.Address[at+1:]

	start := time.Now()
	if err := h.hasMailExchanger(ctx, domain); err != nil {
		return errOutcome(urlitem.WarnDNSError, err.Error())
	}
	duration := time.Since(start)

	return Outcome{Valid: true, Duration: duration, Info: []string{fmt.Sprintf("%s accepts mail", domain)}}
}

func (h *MailtoHandler) hasMailExchanger(ctx context.Context, domain string) error {
	client := new(dns.Client)
	client.Timeout = h.DialTimeout

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	in, _, err := client.ExchangeContext(ctx, msg, h.Resolver)
	if err == nil && in != nil {
		for _, rr := range in.Answer {
			if _, ok := rr.(*dns.MX); ok {
				return nil
			}
		}
	}

	msg = new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeA)
	in, _, err = client.ExchangeContext(ctx, msg, h.Resolver)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", domain, err)
	}
	if in == nil || len(in.Answer) == 0 {
		return fmt.Errorf("domain %s has no MX or A records", domain)
	}
	return nil
}
