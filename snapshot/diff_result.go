package snapshot

// Stable attachment names used by the built-in diff functions.
const (
	AttachmentExpected   = "expected"
	AttachmentActual     = "actual"
	AttachmentDifference = "difference"
)

// Attachment is a named, human-inspectable artifact produced by a diff, e.g. the reference encoding.
type Attachment struct {
	Name   string
	Format Format
}

// DiffResult is the outcome of comparing a reference with a candidate: either Match or Mismatch.
type DiffResult struct {
	mismatch    bool
	message     string
	attachments []Attachment
}

// Match builds a matching DiffResult.
func Match() DiffResult {
	return DiffResult{}
}

// Mismatch builds a failing DiffResult with a human-readable message and optional attachments.
// Attachments without a name are dropped.
func Mismatch(message string, attachments ...Attachment) DiffResult {
	named := make([]Attachment, 0, len(attachments))
	for _, attachment := range attachments {
		if attachment.Name == "" {
			continue
		}
		named = append(named, attachment)
	}

	return DiffResult{
		mismatch:    true,
		message:     message,
		attachments: named,
	}
}

// IsMatch reports whether the compared formats match.
func (r DiffResult) IsMatch() bool {
	return !r.mismatch
}

// Message returns the mismatch description, empty for a match.
func (r DiffResult) Message() string {
	return r.message
}

// Attachments returns a copy of the ordered attachments.
func (r DiffResult) Attachments() []Attachment {
	attachments := make([]Attachment, len(r.attachments))
	copy(attachments, r.attachments)

	return attachments
}

// Attachment returns the attachment with the given name.
func (r DiffResult) Attachment(name string) (Attachment, bool) {
	for _, attachment := range r.attachments {
		if attachment.Name == name {
			return attachment, true
		}
	}

	return Attachment{}, false
}

// ExpectedAndActual returns the reference and candidate as the two standard attachments.
func ExpectedAndActual(reference, candidate Format) []Attachment {
	return []Attachment{
		{Name: AttachmentExpected, Format: reference},
		{Name: AttachmentActual, Format: candidate},
	}
}
