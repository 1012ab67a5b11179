package compiler

// Defaults applied by New when the matching option is not given: the chunk
// size of concurrent classification calls, the number of worst training
// predictions explained per iteration, and the number of training points
// shown to the drafter.
const (
	DefaultBatchSize       = 20
	DefaultWorstK          = 5
	DefaultDraftSampleSize = 10
)

const (
	targetSchemaName   = "target"
	templateSchemaName = "compiled_prompt"
)
