package service

import "strings"

// Message pairs a user-facing heading with explanatory text.
type Message struct {
	Heading string
	Message string
}

// Message categories. Sign-in errors render on the sign-in page; auth errors
// render on the dedicated error page.
const (
	CategorySignInError = "signin-error"
	CategoryAuthError   = "auth-error"
)

// MessageCatalog translates technical OAuth/OIDC error codes into readable
// headings and messages. Pure lookup: no state, no side effects. Unknown or
// absent codes normalize to a category-specific default.
type MessageCatalog struct{}

// GetMessage returns the heading and message for an error code within a
// category. Matching is case-insensitive.
func (MessageCatalog) GetMessage(errorCode, category string) Message {
	normalized := strings.ToLower(errorCode)
	if category == CategorySignInError {
		return signinErrorMessage(normalized)
	}
	return authErrorMessage(normalized)
}

func signinErrorMessage(code string) Message {
	switch code {
	case "signin", "oauthsignin", "oauthcallback", "oauthcreateaccount", "emailcreateaccount", "callback":
		return Message{
			Heading: "Sign-in Failed",
			Message: "Try signing in with a different account.",
		}
	case "oauthaccountnotlinked":
		return Message{
			Heading: "Account Not Linked",
			Message: "To confirm your identity, sign in with the same account you used originally.",
		}
	case "emailsignin":
		return Message{
			Heading: "Email Not Sent",
			Message: "The email could not be sent.",
		}
	case "credentialssignin":
		return Message{
			Heading: "Sign-in Failed",
			Message: "Sign in failed. Check the details you provided are correct.",
		}
	case "sessionrequired":
		return Message{
			Heading: "Sign-in Required",
			Message: "Please sign in to access this page.",
		}
	default:
		return Message{
			Heading: "Unable to Sign in",
			Message: "An unexpected error occurred during sign-in. Please try again.",
		}
	}
}

func authErrorMessage(code string) Message {
	switch code {
	case "configuration":
		return Message{
			Heading: "Server Error",
			Message: "There is a problem with the server configuration. Check the server logs for more information.",
		}
	case "accessdenied":
		return Message{
			Heading: "Access Denied",
			Message: "You do not have permission to sign in.",
		}
	case "verification":
		return Message{
			Heading: "Sign-in Link Invalid",
			Message: "The sign-in link is no longer valid. It may have been used already or it may have expired.",
		}
	default:
		return Message{
			Heading: "Authentication Error",
			Message: "An unexpected error occurred during authentication. Please try again.",
		}
	}
}
