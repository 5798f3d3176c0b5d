package chain

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/Masterminds/semver"
)

// versionPattern matches the semantic version embedded in a tool's --version banner.
var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// GetToolVersion runs the given binary with --version to obtain its version.
// Returns the parsed semantic version, or an error if the tool could not be executed or its banner could not be
// parsed.
func GetToolVersion(binary string) (*semver.Version, error) {
	// Run the tool with --version to obtain its version banner.
	out, err := exec.Command(binary, "--version").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("error while executing %s:\nOUTPUT:\n%s\nERROR: %s\n", binary, string(out), err.Error())
	}

	// Parse the version out of the banner
	versionStr := versionPattern.FindString(string(out))
	if versionStr == "" {
		return nil, errors.New(fmt.Sprintf("could not parse %s version using '%s --version'", binary, binary))
	}

	// Parse our semver string and return it
	return semver.NewVersion(versionStr)
}
