package lims

import "context"

// A ProtocolStep is the configuration of one step of a protocol.
type ProtocolStep struct{ *Entity }

// ProtocolSteps is the resource type of protocol step configurations.
var ProtocolSteps = NewType(Kind{Name: "protocolstep", Prefix: "protstepcnf", Tag: "step"},
	func(e *Entity) *ProtocolStep { return &ProtocolStep{e} })

var (
	protocolStepType           = NewEntityField("type", ProcessTypes)
	protocolStepContainers     = NewStringListField("container-type", "permitted-containers")
	protocolStepQueueFields    = NewAttributeListField("queue-field", "queue-fields")
	protocolStepStepFields     = NewAttributeListField("step-field", "step-fields")
	protocolStepSampleFields   = NewAttributeListField("sample-field", "sample-fields")
	protocolStepStepProperties = NewAttributeListField("step-property", "step-properties")
	protocolStepEPPTriggers    = NewAttributeListField("epp-trigger", "epp-triggers")
)

// Name returns the name of the protocol step.
func (p *ProtocolStep) Name(ctx context.Context) (string, error) {
	return lookupAttr(ctx, nameAttr, p)
}

// Type returns the process type run by the step.
func (p *ProtocolStep) Type(ctx context.Context) (*ProcessType, error) {
	return lookupEntity(ctx, protocolStepType, p)
}

// PermittedContainers returns the names of the container types the
// step may place outputs in.
func (p *ProtocolStep) PermittedContainers(ctx context.Context) ([]string, error) {
	return protocolStepContainers.Get(ctx, p)
}

// QueueFields returns the columns shown in the queue of the step.
func (p *ProtocolStep) QueueFields(ctx context.Context) (*List[map[string]string], error) {
	return protocolStepQueueFields.Get(ctx, p)
}

// StepFields returns the fields recorded on the step itself.
func (p *ProtocolStep) StepFields(ctx context.Context) (*List[map[string]string], error) {
	return protocolStepStepFields.Get(ctx, p)
}

// SampleFields returns the sample fields shown on the step.
func (p *ProtocolStep) SampleFields(ctx context.Context) (*List[map[string]string], error) {
	return protocolStepSampleFields.Get(ctx, p)
}

// StepProperties returns the configured properties of the step.
func (p *ProtocolStep) StepProperties(ctx context.Context) (*List[map[string]string], error) {
	return protocolStepStepProperties.Get(ctx, p)
}

// EPPTriggers returns the automation triggers configured on the step.
func (p *ProtocolStep) EPPTriggers(ctx context.Context) (*List[map[string]string], error) {
	return protocolStepEPPTriggers.Get(ctx, p)
}

// A Protocol is an ordered set of protocol steps.
type Protocol struct{ *Entity }

// Protocols is the resource type of protocols.
var Protocols = NewType(Kind{Name: "protocol", Endpoint: "configuration/protocols", Prefix: "protcnf"},
	func(e *Entity) *Protocol { return &Protocol{e} })

var (
	protocolSteps      = NewEntityListField("step", ProtocolSteps, "steps")
	protocolProperties = NewAttributeListField("protocol-property", "protocol-properties")
)

// Name returns the name of the protocol.
func (p *Protocol) Name(ctx context.Context) (string, error) {
	return lookupAttr(ctx, nameAttr, p)
}

// Steps returns the steps of the protocol in order.
func (p *Protocol) Steps(ctx context.Context) (*List[*ProtocolStep], error) {
	return protocolSteps.Get(ctx, p)
}

// Properties returns the configured properties of the protocol.
func (p *Protocol) Properties(ctx context.Context) (*List[map[string]string], error) {
	return protocolProperties.Get(ctx, p)
}

// A Stage places a protocol, or one of its steps, in a workflow.
type Stage struct{ *Entity }

// Stages is the resource type of workflow stages.
var Stages = NewType(Kind{Name: "stage", Prefix: "stg"},
	func(e *Entity) *Stage { return &Stage{e} })

var (
	stageIndex    = NewIntAttrField("index")
	stageProtocol = NewEntityField("protocol", Protocols)
	stageStep     = NewEntityField("step", ProtocolSteps)
	stageWorkflow = NewEntityField("workflow", Workflows)
)

// Name returns the name of the stage.
func (s *Stage) Name(ctx context.Context) (string, error) {
	return lookupAttr(ctx, nameAttr, s)
}

// Index returns the position of the stage in its workflow.
func (s *Stage) Index(ctx context.Context) (int, error) {
	return stageIndex.Get(ctx, s)
}

// Protocol returns the protocol the stage runs.
func (s *Stage) Protocol(ctx context.Context) (*Protocol, error) {
	return lookupEntity(ctx, stageProtocol, s)
}

// Step returns the protocol step the stage starts with.
func (s *Stage) Step(ctx context.Context) (*ProtocolStep, error) {
	return lookupEntity(ctx, stageStep, s)
}

// Workflow returns the workflow the stage belongs to.
func (s *Stage) Workflow(ctx context.Context) (*Workflow, error) {
	return lookupEntity(ctx, stageWorkflow, s)
}

// A Workflow is a sequence of protocols a sample is routed through.
type Workflow struct{ *Entity }

// Workflows is the resource type of workflows.
var Workflows = NewType(Kind{Name: "workflow", Endpoint: "configuration/workflows", Prefix: "wkfcnf"},
	func(e *Entity) *Workflow { return &Workflow{e} })

var (
	workflowStatus    = NewStringAttrField("status")
	workflowProtocols = NewEntityListField("protocol", Protocols, "protocols")
	workflowStages    = NewEntityListField("stage", Stages, "stages")
)

// Name returns the name of the workflow.
func (w *Workflow) Name(ctx context.Context) (string, error) {
	return lookupAttr(ctx, nameAttr, w)
}

// Status returns "ACTIVE", "PENDING" or "ARCHIVED".
func (w *Workflow) Status(ctx context.Context) (string, error) {
	return lookupAttr(ctx, workflowStatus, w)
}

// Protocols returns the protocols of the workflow in order.
func (w *Workflow) Protocols(ctx context.Context) (*List[*Protocol], error) {
	return workflowProtocols.Get(ctx, w)
}

// Stages returns the stages of the workflow in order.
func (w *Workflow) Stages(ctx context.Context) (*List[*Stage], error) {
	return workflowStages.Get(ctx, w)
}

// A Queue holds the artifacts waiting for a protocol step.
type Queue struct{ *Entity }

// Queues is the resource type of queues. Queue ids are protocol step
// ids.
var Queues = NewType(Kind{Name: "queue", Endpoint: "queues", Prefix: "que"},
	func(e *Entity) *Queue { return &Queue{e} })

var queueArtifacts = NewEntityListField("artifact", Artifacts, "artifacts")

// Artifacts returns the queued artifacts.
func (q *Queue) Artifacts(ctx context.Context) ([]*Artifact, error) {
	return entities(queueArtifacts.Get(ctx, q))
}
