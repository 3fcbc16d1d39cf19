package llm

// Result is the outcome of a generation call: either text or the reason the
// remote API could not produce any.
type Result struct {
	text   string
	reason error
}

// Ok wraps generated text.
func Ok(text string) Result { return Result{text: text} }

// Unavailable records why no text was generated.
func Unavailable(reason error) Result { return Result{reason: reason} }

// OK reports whether the call produced text.
func (r Result) OK() bool { return r.reason == nil }

// Text is the generated text, "" when unavailable.
func (r Result) Text() string { return r.text }

// Reason is nil for an Ok result.
func (r Result) Reason() error { return r.reason }
