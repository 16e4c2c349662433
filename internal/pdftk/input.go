package pdftk

import "fmt"

// ValidHandle reports whether h is one or more upper-case ASCII letters.
func ValidHandle(h string) bool {
	if h == "" {
		return false
	}
	for i := 0; i < len(h); i++ {
		if h[i] < 'A' || h[i] > 'Z' {
			return false
		}
	}
	return true
}

func checkHandle(h string) error {
	if !ValidHandle(h) {
		return fmt.Errorf("%w: %q is not a valid handle. A handle must be one or more upper-case letters", ErrInvalidHandle, h)
	}
	return nil
}

// InputFile binds a PDF path to the handle pdftk uses to refer to it, plus
// an optional password.
type InputFile struct {
	filePath    string
	handle      string
	password    string
	hasPassword bool
}

// NewInputFile creates an input without a password.
func NewInputFile(filePath, handle string) (*InputFile, error) {
	in := &InputFile{filePath: filePath}
	if err := in.SetHandle(handle); err != nil {
		return nil, err
	}
	return in, nil
}

// NewProtectedInputFile creates an input opened with the given password.
func NewProtectedInputFile(filePath, handle, password string) (*InputFile, error) {
	in, err := NewInputFile(filePath, handle)
	if err != nil {
		return nil, err
	}
	in.SetPassword(password)
	return in, nil
}

func (in *InputFile) FilePath() string { return in.filePath }
func (in *InputFile) Handle() string   { return in.handle }

// Password returns the input password and whether one is set. An empty
// password that was explicitly set still counts as set.
func (in *InputFile) Password() (string, bool) {
	return in.password, in.hasPassword
}

func (in *InputFile) SetFilePath(p string) *InputFile {
	in.filePath = p
	return in
}

// SetHandle validates and stores the handle.
func (in *InputFile) SetHandle(h string) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	in.handle = h
	return nil
}

func (in *InputFile) SetPassword(pw string) *InputFile {
	in.password = pw
	in.hasPassword = true
	return in
}

func (in *InputFile) ClearPassword() *InputFile {
	in.password = ""
	in.hasPassword = false
	return in
}
