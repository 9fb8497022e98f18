package protocols_test

import (
	"testing"

	"github.com/linkchecker-go/linkcheck/protocols"
)

func TestRegistryLookupDispatchesByScheme(t *testing.T) {
	httpHandler := protocols.NewHTTPHandler(nil, "linkcheck-test/1.0", nil)
	ftpHandler := protocols.NewFTPHandler()
	fileHandler := protocols.NewFileHandler()
	mailtoHandler := protocols.NewMailtoHandler("")
	newsHandler := protocols.NewNewsHandler("")
	telnetHandler := protocols.NewTelnetHandler()

	reg := protocols.NewRegistry(httpHandler, ftpHandler, fileHandler, mailtoHandler, newsHandler, telnetHandler)

	for _, scheme := range []string{"http", "https", "ftp", "file", "mailto", "news", "nntp", "telnet", "HTTP"} {
		if _, ok := reg.Lookup(scheme); !ok {
			t.Fatalf("expected a handler for scheme %q", scheme)
		}
	}
	if _, ok := reg.Lookup("gopher"); ok {
		t.Fatal("did not expect a handler for an unsupported scheme")
	}
}
