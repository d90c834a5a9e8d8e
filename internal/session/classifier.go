package session

import "strings"

// Kind is the classification of an incoming text message
type Kind int

const (
	// FreshText means the message starts or continues a plain text exchange
	FreshText Kind = iota
	// ImageFollowUp means the message continues discussion of the most
	// recent image the user sent
	ImageFollowUp
)

// String returns the kind name
func (k Kind) String() string {
	if k == ImageFollowUp {
		return "image_follow_up"
	}
	return "fresh_text"
}

// greetingTokens are words that signal a conversational reset rather than a
// question about the last image. Matched case-insensitively as substrings.
var greetingTokens = []string{"hello", "hi", "hey", "start"}

// Classify decides whether a text message continues the user's prior image
// discussion. It returns ImageFollowUp only when the session holds an image
// context and the message contains no greeting token.
//
// This is a deliberately coarse heuristic: a genuine follow-up phrased with a
// greeting ("hi, what color is it?") classifies as fresh text. It favors
// continuity over precision and has no confirmation step.
func Classify(sess *Session, text string) Kind {
	if sess == nil || sess.Image == nil {
		return FreshText
	}

	lower := strings.ToLower(text)
	for _, token := range greetingTokens {
		if strings.Contains(lower, token) {
			return FreshText
		}
	}

	return ImageFollowUp
}

// Classify classifies a message for a user under the store's lock, so the
// image context cannot change mid-decision.
func (s *Store) Classify(userID int64, text string) Kind {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Classify(s.getOrCreateLocked(userID), text)
}
