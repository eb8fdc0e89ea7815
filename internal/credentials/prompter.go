package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	promptInputMissingErrorMessageConstant = "prompt input not configured"
	emptySecretErrorTemplateConstant       = "no value entered for %q"
)

// SecretPrompter asks the user for a secret value.
type SecretPrompter interface {
	PromptSecret(prompt string) (string, error)
}

// TerminalPrompter reads secrets without echo when the input is a terminal and
// falls back to reading a single line otherwise.
type TerminalPrompter struct {
	input          io.Reader
	output         io.Writer
	lineReader     *bufio.Reader
	isTerminal     func(fileDescriptor int) bool
	passwordReader func(fileDescriptor int) ([]byte, error)
}

// NewTerminalPrompter constructs a prompter reading from input and writing prompts to output.
func NewTerminalPrompter(input io.Reader, output io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		input:          input,
		output:         output,
		isTerminal:     term.IsTerminal,
		passwordReader: term.ReadPassword,
	}
}

// PromptSecret writes the prompt and returns the trimmed response.
func (prompter *TerminalPrompter) PromptSecret(prompt string) (string, error) {
	if prompter.input == nil {
		return "", errors.New(promptInputMissingErrorMessageConstant)
	}
	if prompter.output != nil {
		if _, writeError := io.WriteString(prompter.output, prompt); writeError != nil {
			return "", writeError
		}
	}

	response, readError := prompter.read()
	if readError != nil {
		return "", readError
	}

	trimmedResponse := strings.TrimSpace(response)
	if len(trimmedResponse) == 0 {
		return "", fmt.Errorf(emptySecretErrorTemplateConstant, strings.TrimSpace(prompt))
	}
	return trimmedResponse, nil
}

func (prompter *TerminalPrompter) read() (string, error) {
	if inputFile, isFile := prompter.input.(*os.File); isFile {
		fileDescriptor := int(inputFile.Fd())
		if prompter.isTerminal(fileDescriptor) {
			secret, readError := prompter.passwordReader(fileDescriptor)
			if prompter.output != nil {
				fmt.Fprintln(prompter.output)
			}
			return string(secret), readError
		}
	}

	if prompter.lineReader == nil {
		prompter.lineReader = bufio.NewReader(prompter.input)
	}
	response, readError := prompter.lineReader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	return response, nil
}
