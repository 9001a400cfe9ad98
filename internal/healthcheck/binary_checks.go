package healthcheck

import "github.com/gogo2464/LIEF/pefmt"

// WarningBudgetCheck fails a parse that recovered from more than
// Budget warnings, on the theory that a handful of recovered steps is
// normal wear (packers, old toolchains) but a flood of them usually
// means the file is mostly garbage.
type WarningBudgetCheck struct {
	Budget int
}

func (c WarningBudgetCheck) ID() string          { return "warning-budget" }
func (c WarningBudgetCheck) Description() string { return "counts recovered parse warnings against a budget" }

func (c WarningBudgetCheck) Execute(bin *pefmt.Binary) Result {
	n := len(bin.Warnings)
	res := Result{ID: c.ID(), Description: c.Description(), Details: n}
	switch {
	case n == 0:
		res.Status = StatusOK
		res.Message = "no recovered warnings"
	case n <= c.Budget:
		res.Status = StatusWarn
		res.Message = "recovered from warnings within budget"
	default:
		res.Status = StatusFail
		res.Message = "warning count exceeds budget, file is likely malformed"
	}
	return res
}

// OverlayCheck reports trailing-data presence without judging it good
// or bad — an overlay is common (signed installers append a
// certificate table, packers append stage-2 payloads) but is always
// worth surfacing.
type OverlayCheck struct{}

func (c OverlayCheck) ID() string          { return "overlay" }
func (c OverlayCheck) Description() string { return "reports trailing bytes past the last section" }

func (c OverlayCheck) Execute(bin *pefmt.Binary) Result {
	if bin.Overlay == nil {
		return Result{ID: c.ID(), Description: c.Description(), Status: StatusOK, Message: "no overlay"}
	}
	return Result{
		ID:          c.ID(),
		Description: c.Description(),
		Status:      StatusWarn,
		Message:     "trailing data present past the last section",
		Details:     *bin.Overlay,
	}
}

// DirectoryDispatchCheck flags a present data directory whose
// sub-parser never set the corresponding Has* flag — meaning it was
// present in the table but its dispatch failed (§4.5 warn-and-continue).
type DirectoryDispatchCheck struct{}

func (c DirectoryDispatchCheck) ID() string { return "directory-dispatch" }
func (c DirectoryDispatchCheck) Description() string {
	return "flags present data directories whose sub-parser never produced output"
}

func (c DirectoryDispatchCheck) Execute(bin *pefmt.Binary) Result {
	var failed []string

	check := func(present bool, ok bool, name string) {
		if present && !ok {
			failed = append(failed, name)
		}
	}
	check(bin.Directories[pefmt.DirImport].RVA > 0, bin.HasImports, "import")
	check(bin.Directories[pefmt.DirExport].RVA > 0, bin.HasExports, "export")
	check(bin.Directories[pefmt.DirTLS].RVA > 0, bin.HasTLS, "tls")
	check(bin.Directories[pefmt.DirLoadConfig].RVA > 0, bin.HasConfiguration, "load_config")
	check(bin.Directories[pefmt.DirBaseReloc].RVA > 0, bin.HasRelocations, "base_reloc")
	check(bin.Directories[pefmt.DirDebug].RVA > 0, bin.HasDebug, "debug")
	check(bin.Directories[pefmt.DirResource].RVA > 0, bin.HasResources, "resource")
	check(bin.Directories[pefmt.DirCertificate].RVA > 0, bin.HasSignature, "certificate")

	if len(failed) == 0 {
		return Result{ID: c.ID(), Description: c.Description(), Status: StatusOK, Message: "every present directory dispatched cleanly"}
	}
	return Result{
		ID:          c.ID(),
		Description: c.Description(),
		Status:      StatusWarn,
		Message:     "some present directories failed to dispatch, see Warnings for the reason",
		Details:     failed,
	}
}

// SectionTagCheck confirms every directory bound to a section actually
// got tagged (§4.5 "tag that section with the corresponding semantic
// kind").
type SectionTagCheck struct{}

func (c SectionTagCheck) ID() string          { return "section-tags" }
func (c SectionTagCheck) Description() string { return "confirms directory-to-section tagging ran" }

func (c SectionTagCheck) Execute(bin *pefmt.Binary) Result {
	boundCount := 0
	for _, dir := range bin.Directories {
		if dir.Section != nil {
			boundCount++
		}
	}
	tagged := len(bin.SectionTags())

	if boundCount == 0 {
		return Result{ID: c.ID(), Description: c.Description(), Status: StatusOK, Message: "no directory bound to a section"}
	}
	if tagged < boundCount {
		return Result{
			ID:          c.ID(),
			Description: c.Description(),
			Status:      StatusWarn,
			Message:     "fewer section tags recorded than directories bound to sections",
			Details:     map[string]int{"bound": boundCount, "tagged": tagged},
		}
	}
	return Result{ID: c.ID(), Description: c.Description(), Status: StatusOK, Message: "all bound directories tagged"}
}

// ImportCoverageCheck fails when the import directory is present but
// every descriptor in it was discarded (invalid DLL names, unmapped
// RVAs), since that usually means the file's import table is either
// heavily corrupted or deliberately obfuscated.
type ImportCoverageCheck struct{}

func (c ImportCoverageCheck) ID() string          { return "import-coverage" }
func (c ImportCoverageCheck) Description() string { return "flags an import directory that decoded zero libraries" }

func (c ImportCoverageCheck) Execute(bin *pefmt.Binary) Result {
	if !bin.HasImports {
		return Result{ID: c.ID(), Description: c.Description(), Status: StatusOK, Message: "no import directory present"}
	}
	if len(bin.Imports) == 0 {
		return Result{
			ID:          c.ID(),
			Description: c.Description(),
			Status:      StatusFail,
			Message:     "import directory present but every descriptor was discarded",
		}
	}
	return Result{
		ID:          c.ID(),
		Description: c.Description(),
		Status:      StatusOK,
		Message:     "import table decoded",
		Details:     len(bin.Imports),
	}
}
