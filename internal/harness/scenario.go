package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stockslot/internal/program"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Capacity is the payload size of new slots. Zero means the default.
	Capacity int `yaml:"capacity,omitempty"`

	// Seed is the namespace tag. Empty means config.DefaultSeed.
	Seed string `yaml:"seed,omitempty"`

	// Owners lists the owner names steps may refer to.
	Owners []string `yaml:"owners"`

	// Flow is executed in order against one store.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final slots and journal.
	Assertions []Assertion `yaml:"assertions"`
}

// Step operations.
const (
	OpCreate  = "create"
	OpAppend  = "append"
	OpList    = "list"
	OpHistory = "history"
)

// Step is one signed request.
type Step struct {
	// Owner signs the request.
	Owner string `yaml:"owner"`

	// Op is one of create, append, list, history.
	Op string `yaml:"op"`

	// Record is the appended record (append only).
	Record *RecordArgs `yaml:"record,omitempty"`

	// BumpOffset is added to the canonical bump (create only).
	BumpOffset int `yaml:"bump_offset,omitempty"`

	// AddressOf claims another owner's canonical slot address.
	AddressOf string `yaml:"address_of,omitempty"`

	// RequestID overrides the generated request id.
	RequestID string `yaml:"request_id,omitempty"`

	// Expect is the expected outcome. Nil means OK.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// RecordArgs is a record as written in scenario files. A nil EntryDate
// takes the next value of the harness clock.
type RecordArgs struct {
	Item      string `yaml:"item"`
	Price     string `yaml:"price"`
	Quantity  int64  `yaml:"quantity"`
	EntryDate *int64 `yaml:"entrydate,omitempty"`
}

// ExpectClause specifies the expected result of a step.
type ExpectClause struct {
	// Outcome is OK or a program error code such as NO_PRODUCTS.
	Outcome string `yaml:"outcome"`

	// Records is the expected record count after the step (create,
	// append), the number listed (list) or the journal length (history).
	Records *int `yaml:"records,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "records": the owner's slot lists exactly Records
	// - "no_products": the owner's slot exists and is empty
	// - "journal": the owner's journal holds exactly Ops, in order
	// - "slot_count": exactly Count slots are allocated
	Type string `yaml:"type"`

	Owner   string       `yaml:"owner,omitempty"`
	Records []RecordArgs `yaml:"records,omitempty"`
	Ops     []string     `yaml:"ops,omitempty"`
	Count   int          `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertRecords    = "records"
	AssertNoProducts = "no_products"
	AssertJournal    = "journal"
	AssertSlotCount  = "slot_count"
)

// OutcomeOK is the outcome of a step that succeeded.
const OutcomeOK = "OK"

var validOutcomes = map[string]bool{
	OutcomeOK:                                true,
	string(program.ErrCodeNoProducts):        true,
	string(program.ErrCodeSlotAlreadyExists): true,
	string(program.ErrCodeAddressMismatch):   true,
	string(program.ErrCodeStorageExhausted):  true,
	string(program.ErrCodeSlotNotFound):      true,
	string(program.ErrCodeUnauthorized):      true,
	string(program.ErrCodeDuplicateRequest):  true,
	string(program.ErrCodeInvalidAccount):    true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Capacity < 0 {
		return fmt.Errorf("capacity must be non-negative")
	}
	if len(s.Owners) == 0 {
		return fmt.Errorf("owners list is required and must be non-empty")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	owners := make(map[string]bool, len(s.Owners))
	for i, name := range s.Owners {
		if name == "" {
			return fmt.Errorf("owners[%d]: name is required", i)
		}
		if owners[name] {
			return fmt.Errorf("owners[%d]: duplicate owner %q", i, name)
		}
		owners[name] = true
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step, owners); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, owners); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step, owners map[string]bool) error {
	if !owners[step.Owner] {
		return fmt.Errorf("flow[%d]: unknown owner %q", index, step.Owner)
	}
	if step.AddressOf != "" && !owners[step.AddressOf] {
		return fmt.Errorf("flow[%d]: address_of names unknown owner %q", index, step.AddressOf)
	}

	switch step.Op {
	case OpCreate, OpList, OpHistory:
		if step.Record != nil {
			return fmt.Errorf("flow[%d]: record is only valid for append", index)
		}
	case OpAppend:
		if step.Record == nil {
			return fmt.Errorf("flow[%d]: record is required for append", index)
		}
	case "":
		return fmt.Errorf("flow[%d]: op is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown op %q", index, step.Op)
	}

	if step.BumpOffset != 0 && step.Op != OpCreate {
		return fmt.Errorf("flow[%d]: bump_offset is only valid for create", index)
	}
	if step.Op == OpHistory && step.AddressOf != "" {
		return fmt.Errorf("flow[%d]: address_of is not valid for history", index)
	}

	if step.Expect != nil && !validOutcomes[step.Expect.Outcome] {
		return fmt.Errorf("flow[%d].expect: unknown outcome %q", index, step.Expect.Outcome)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, owners map[string]bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRecords:
		if len(a.Records) == 0 {
			return fmt.Errorf("assertions[%d]: records list is required for records (use no_products for an empty slot)", index)
		}
		for j, r := range a.Records {
			if r.EntryDate == nil {
				return fmt.Errorf("assertions[%d].records[%d]: entrydate is required", index, j)
			}
		}
	case AssertNoProducts:
	case AssertJournal:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for journal", index)
		}
	case AssertSlotCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for slot_count", index)
		}
		return nil
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if !owners[a.Owner] {
		return fmt.Errorf("assertions[%d]: unknown owner %q", index, a.Owner)
	}
	return nil
}
