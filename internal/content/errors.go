// Package content implements the mod content pipeline: discovery of mod
// source trees, compilation of YAML entity defs, the binary pack cache with
// its JSON manifest sidecar, and the planner that decides per mod whether to
// recompile or reuse the cache.
package content

import "fmt"

// CompileErrorCode classifies failures while compiling a mod's def sources.
type CompileErrorCode string

const (
	CodeMissingDefName   CompileErrorCode = "MissingDefName"
	CodeInvalidValue     CompileErrorCode = "InvalidValue"
	CodeDuplicateDefName CompileErrorCode = "DuplicateDefName"
	CodeUnknownField     CompileErrorCode = "UnknownField"
	CodeReadFailure      CompileErrorCode = "ReadFailure"
	CodeMalformedFile    CompileErrorCode = "MalformedFile"
)

// CompileError is a structured, user-facing compile failure. Compile errors
// are fatal during startup; the process reports them and exits.
type CompileError struct {
	Code    CompileErrorCode
	ModID   string
	DefName string
	Field   string
	Message string
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("content compile error [%s] mod %q", e.Code, e.ModID)
	if e.DefName != "" {
		msg += fmt.Sprintf(" def %q", e.DefName)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	return msg + ": " + e.Message
}

// PlanErrorCode classifies failures while building a compile plan.
type PlanErrorCode string

const (
	PlanCodeEmptyEnabledMod     PlanErrorCode = "EmptyEnabledMod"
	PlanCodeDuplicateEnabledMod PlanErrorCode = "DuplicateEnabledMod"
	PlanCodeEnabledModMissing   PlanErrorCode = "EnabledModMissing"
	PlanCodeReadDir             PlanErrorCode = "ReadDir"
	PlanCodeReadFile            PlanErrorCode = "ReadFile"
	PlanCodeCreateCacheLayout   PlanErrorCode = "CreateCacheLayout"
)

// PlanError is a structured planning failure. Plan errors are fatal; unlike
// cache mismatches they cannot be downgraded to a recompile.
type PlanError struct {
	Code    PlanErrorCode
	ModID   string
	Path    string
	Message string
	Err     error
}

func (e *PlanError) Error() string {
	msg := fmt.Sprintf("content plan error [%s]", e.Code)
	if e.ModID != "" {
		msg += fmt.Sprintf(" mod %q", e.ModID)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" path %q", e.Path)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PlanError) Unwrap() error { return e.Err }

// PackError is a failure reading or writing a binary content pack. During
// cache loads pack errors downgrade the decision to Compile; during writes
// they are fatal.
type PackError struct {
	Path    string
	Message string
	Err     error
}

func (e *PackError) Error() string {
	msg := fmt.Sprintf("content pack %q: %s", e.Path, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PackError) Unwrap() error { return e.Err }
