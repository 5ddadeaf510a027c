package lims

import "context"

// A ProcessType is the configuration of a kind of process.
type ProcessType struct{ *Entity }

// ProcessTypes is the resource type of process types.
var ProcessTypes = NewType(Kind{Name: "processtype", Endpoint: "processtypes", Prefix: "ptp", Tag: "process-type"},
	func(e *Entity) *ProcessType { return &ProcessType{e} })

// Name returns the name of the process type.
func (t *ProcessType) Name(ctx context.Context) (string, error) {
	return lookupAttr(ctx, nameAttr, t)
}

// A UDFConfig is the definition of a user-defined field.
type UDFConfig struct{ *Entity }

// UDFConfigs is the resource type of field definitions.
var UDFConfigs = NewType(Kind{Name: "udfconfig", Endpoint: "configuration/udfs", Prefix: "cnf", Tag: "field"},
	func(e *Entity) *UDFConfig { return &UDFConfig{e} })

var (
	udfConfigAttachToName      = NewStringField("attach-to-name")
	udfConfigAttachToCategory  = NewStringField("attach-to-category")
	udfConfigShowInLablink     = NewBoolField("show-in-lablink")
	udfConfigAllowNonPreset    = NewBoolField("allow-non-preset-values")
	udfConfigFirstPresetIsDflt = NewBoolField("first-preset-is-default-value")
	udfConfigShowInTables      = NewBoolField("show-in-tables")
	udfConfigIsEditable        = NewBoolField("is-editable")
	udfConfigIsDeviation       = NewBoolField("is-deviation")
	udfConfigIsControlledVocab = NewBoolField("is-controlled-vocabulary")
	udfConfigPresets           = NewStringListField("preset")
)

// Name returns the name of the configured field.
func (c *UDFConfig) Name(ctx context.Context) (string, error) {
	return lookupString(ctx, nameField, c)
}

// AttachToName returns the name of the kind of resource the field
// belongs to, such as "Sample" or a process type name.
func (c *UDFConfig) AttachToName(ctx context.Context) (string, error) {
	return lookupString(ctx, udfConfigAttachToName, c)
}

// AttachToCategory returns the category of the process types the
// field applies to, if any.
func (c *UDFConfig) AttachToCategory(ctx context.Context) (string, error) {
	return lookupString(ctx, udfConfigAttachToCategory, c)
}

// ShowInLablink reports whether the field is visible to LabLink
// users.
func (c *UDFConfig) ShowInLablink(ctx context.Context) (bool, error) {
	return lookupBool(ctx, udfConfigShowInLablink, c)
}

// AllowNonPresetValues reports whether values outside Presets are
// accepted.
func (c *UDFConfig) AllowNonPresetValues(ctx context.Context) (bool, error) {
	return lookupBool(ctx, udfConfigAllowNonPreset, c)
}

// FirstPresetIsDefaultValue reports whether new entities start with
// the first preset.
func (c *UDFConfig) FirstPresetIsDefaultValue(ctx context.Context) (bool, error) {
	return lookupBool(ctx, udfConfigFirstPresetIsDflt, c)
}

// ShowInTables reports whether the field appears as a table column.
func (c *UDFConfig) ShowInTables(ctx context.Context) (bool, error) {
	return lookupBool(ctx, udfConfigShowInTables, c)
}

// IsEditable reports whether users may change the field.
func (c *UDFConfig) IsEditable(ctx context.Context) (bool, error) {
	return lookupBool(ctx, udfConfigIsEditable, c)
}

// IsDeviation reports whether the field records protocol deviations.
func (c *UDFConfig) IsDeviation(ctx context.Context) (bool, error) {
	return lookupBool(ctx, udfConfigIsDeviation, c)
}

// IsControlledVocabulary reports whether the field draws its values
// from a controlled vocabulary.
func (c *UDFConfig) IsControlledVocabulary(ctx context.Context) (bool, error) {
	return lookupBool(ctx, udfConfigIsControlledVocab, c)
}

// Presets returns the allowed values of the field.
func (c *UDFConfig) Presets(ctx context.Context) ([]string, error) {
	return udfConfigPresets.Get(ctx, c)
}

// A Process is a run of a process type, turning input artifacts into
// output artifacts.
type Process struct{ *Entity }

// Processes is the resource type of processes.
var Processes = NewType(Kind{Name: "process", Endpoint: "processes", Prefix: "prc", CreationPrefix: "prx"},
	func(e *Entity) *Process { return &Process{e} })

var (
	processType       = NewEntityField("type", ProcessTypes)
	processDateRun    = NewStringField("date-run")
	processTechnician = NewEntityField("technician", Researchers)
	processProtocol   = NewStringField("protocol-name")
	processParameter  = NewStringField("process-parameter")
	processIOMaps     = NewIOMapField()
)

// Type returns the process type, or nil.
func (p *Process) Type(ctx context.Context) (*ProcessType, error) {
	return lookupEntity(ctx, processType, p)
}

// DateRun returns the date the process was run, as YYYY-MM-DD.
func (p *Process) DateRun(ctx context.Context) (string, error) {
	return lookupString(ctx, processDateRun, p)
}

// Technician returns the researcher who ran the process.
func (p *Process) Technician(ctx context.Context) (*Researcher, error) {
	return lookupEntity(ctx, processTechnician, p)
}

// ProtocolName returns the name of the protocol the process ran in.
func (p *Process) ProtocolName(ctx context.Context) (string, error) {
	return lookupString(ctx, processProtocol, p)
}

// ProcessParameter returns the name of the parameter set the process
// was run with.
func (p *Process) ProcessParameter(ctx context.Context) (string, error) {
	return lookupString(ctx, processParameter, p)
}

// InputOutputMaps returns the pairs of inputs and outputs of the
// process.
func (p *Process) InputOutputMaps(ctx context.Context) ([]IOMap, error) {
	return processIOMaps.Get(ctx, p)
}

// UDF returns the user-defined fields of the process.
func (p *Process) UDF(ctx context.Context) (*UDFDict, error) {
	return rootUDF.Get(ctx, p)
}
// UDT returns the user-defined type of the process.
func (p *Process) UDT(ctx context.Context) (*UDFDict, error) {
	return rootUDT.Get(ctx, p)
}

// Files returns the files attached to the process.
func (p *Process) Files(ctx context.Context) (*List[*File], error) {
	return attachedFiles.Get(ctx, p)
}

// artifactsByID returns the artifacts with the given LIMS ids, in
// order, dropping repeats when unique is set.
func (p *Process) artifactsByID(ctx context.Context, ids []string, unique, resolve bool) ([]*Artifact, error) {
	var (
		result []*Artifact
		seen   = make(map[string]bool)
	)
	for _, id := range ids {
		if id == "" || (unique && seen[id]) {
			continue
		}
		seen[id] = true
		a, err := Artifacts.ByID(p.session, id)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if resolve {
		rs := make([]Resource, len(result))
		for i, a := range result {
			rs[i] = a
		}
		if err := p.session.GetBatch(ctx, rs...); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// AllInputs returns the input artifacts of the process. With unique
// set, each artifact appears once; with resolve set, their documents
// are loaded with one batch request. A map without an input is
// reported as a *MissingValueError.
func (p *Process) AllInputs(ctx context.Context, unique, resolve bool) ([]*Artifact, error) {
	maps, err := p.InputOutputMaps(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(maps))
	for _, m := range maps {
		if m.Input == nil {
			p.session.errorf("process has no input artifacts", "process", p.uri)
			return nil, &MissingValueError{Kind: p.kind.Name, Field: "input-output-map/input"}
		}
		ids = append(ids, m.Input.LimsID())
	}
	return p.artifactsByID(ctx, ids, unique, resolve)
}

// AllOutputs returns the output artifacts of the process. Maps
// without an output are skipped.
func (p *Process) AllOutputs(ctx context.Context, unique, resolve bool) ([]*Artifact, error) {
	maps, err := p.InputOutputMaps(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, m := range maps {
		if m.Output != nil {
			ids = append(ids, m.Output.LimsID())
		}
	}
	return p.artifactsByID(ctx, ids, unique, resolve)
}

// Output types of artifacts.
const (
	OutputResultFile       = "ResultFile"
	OutputSharedResultFile = "SharedResultFile"
	OutputAnalyte          = "Analyte"
)

// OutputsPerInput returns the outputs produced from the input with
// LIMS id inputID. A non-empty outputType restricts the result to
// outputs of that type.
func (p *Process) OutputsPerInput(ctx context.Context, inputID, outputType string) ([]*Artifact, error) {
	maps, err := p.InputOutputMaps(ctx)
	if err != nil {
		return nil, err
	}
	var result []*Artifact
	for _, m := range maps {
		if m.Input == nil || m.Output == nil || m.Input.LimsID() != inputID {
			continue
		}
		if outputType != "" && m.Output.OutputType() != outputType {
			continue
		}
		if m.Output.Artifact != nil {
			result = append(result, m.Output.Artifact)
		}
	}
	return result, nil
}

func (p *Process) outputsOfType(ctx context.Context, outputType string) ([]*Artifact, error) {
	outputs, err := p.AllOutputs(ctx, true, true)
	if err != nil {
		return nil, err
	}
	var result []*Artifact
	for _, a := range outputs {
		t, err := a.OutputType(ctx)
		if err != nil {
			return nil, err
		}
		if t == outputType {
			result = append(result, a)
		}
	}
	return result, nil
}

// ResultFiles returns the per-input result files of the process.
func (p *Process) ResultFiles(ctx context.Context) ([]*Artifact, error) {
	return p.outputsOfType(ctx, OutputResultFile)
}

// SharedResultFiles returns the result files shared by all inputs.
func (p *Process) SharedResultFiles(ctx context.Context) ([]*Artifact, error) {
	return p.outputsOfType(ctx, OutputSharedResultFile)
}

// Analytes returns the output analytes of the process, or its input
// analytes if it produced none. The string reports which side was
// used: "Output" or "Input".
func (p *Process) Analytes(ctx context.Context) ([]*Artifact, string, error) {
	filter := func(as []*Artifact) ([]*Artifact, error) {
		var result []*Artifact
		for _, a := range as {
			t, err := a.Type(ctx)
			if err != nil {
				return nil, err
			}
			if t == OutputAnalyte {
				result = append(result, a)
			}
		}
		return result, nil
	}
	outputs, err := p.AllOutputs(ctx, true, true)
	if err != nil {
		return nil, "", err
	}
	analytes, err := filter(outputs)
	if err != nil || len(analytes) > 0 {
		return analytes, "Output", err
	}
	inputs, err := p.AllInputs(ctx, true, true)
	if err != nil {
		return nil, "", err
	}
	analytes, err = filter(inputs)
	return analytes, "Input", err
}

// ParentProcesses returns the processes that produced the inputs of
// p. Inputs without a parent process are skipped.
func (p *Process) ParentProcesses(ctx context.Context) ([]*Process, error) {
	inputs, err := p.AllInputs(ctx, true, true)
	if err != nil {
		return nil, err
	}
	var result []*Process
	for _, a := range inputs {
		pp, err := a.ParentProcess(ctx)
		if err != nil {
			return nil, err
		}
		if pp != nil {
			result = append(result, pp)
		}
	}
	return result, nil
}

// OutputContainers returns the distinct containers holding outputs
// of the process.
func (p *Process) OutputContainers(ctx context.Context) ([]*Container, error) {
	outputs, err := p.AllOutputs(ctx, true, true)
	if err != nil {
		return nil, err
	}
	var (
		result []*Container
		seen   = make(map[*Container]bool)
	)
	for _, a := range outputs {
		c, err := a.Container(ctx)
		if err != nil {
			return nil, err
		}
		if c != nil && !seen[c] {
			seen[c] = true
			result = append(result, c)
		}
	}
	return result, nil
}

// Step returns the step that ran the process. The two share a LIMS
// id.
func (p *Process) Step() (*Step, error) {
	return Steps.ByID(p.session, p.ID())
}
