package result

import "github.com/linkchecker-go/linkcheck/urlitem"

// FormatTag returns a human-readable label for a warning tag, used by the
// TUI and text summaries to group broken links (component design §6's
// "category" grouping, now keyed on the closed WarningTag enumeration
// rather than a parallel classification scheme).
func FormatTag(tag urlitem.WarningTag) string {
	switch tag {
	case urlitem.WarnTimeout:
		return "Timeouts"
	case urlitem.WarnDNSError:
		return "DNS Failures"
	case urlitem.WarnUnreachable:
		return "Unreachable"
	case urlitem.WarnRedirectLoop:
		return "Redirect Loops"
	case urlitem.WarnAuthRequired:
		return "Authentication Required"
	case urlitem.WarnAnchorNotFound:
		return "Anchor Not Found"
	case urlitem.WarnRobotsDenied:
		return "Disallowed by robots.txt"
	case urlitem.WarnContentTooLarge:
		return "Content Too Large"
	case urlitem.WarnContentTypeMismatch:
		return "Content-Type Mismatch"
	case urlitem.WarnSSLError:
		return "TLS Errors"
	case urlitem.WarnFTPError:
		return "FTP Errors"
	case urlitem.WarnNNTPError:
		return "NNTP Errors"
	case urlitem.WarnHTMLSyntax:
		return "HTML Syntax Warnings"
	case urlitem.WarnCSSSyntax:
		return "CSS Syntax Warnings"
	case urlitem.WarnVirusDetected:
		return "Virus Detected"
	case urlitem.WarnURLInvalid:
		return "Invalid URL"
	case urlitem.WarnUnsupportedScheme:
		return "Unsupported Scheme"
	default:
		return "Other Errors"
	}
}

// TagOrder lists every warning tag in the TUI's preferred display order,
// most-actionable first.
var TagOrder = []urlitem.WarningTag{
	urlitem.WarnUnreachable,
	urlitem.WarnTimeout,
	urlitem.WarnDNSError,
	urlitem.WarnRedirectLoop,
	urlitem.WarnAuthRequired,
	urlitem.WarnAnchorNotFound,
	urlitem.WarnRobotsDenied,
	urlitem.WarnContentTooLarge,
	urlitem.WarnContentTypeMismatch,
	urlitem.WarnSSLError,
	urlitem.WarnFTPError,
	urlitem.WarnNNTPError,
	urlitem.WarnHTMLSyntax,
	urlitem.WarnCSSSyntax,
	urlitem.WarnVirusDetected,
	urlitem.WarnURLInvalid,
	urlitem.WarnUnsupportedScheme,
}
