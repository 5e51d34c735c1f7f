package driven

import "github.com/custodia-labs/planroom/internal/core/domain"

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswerSystem is the system prompt for grounded question answering.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps retrieved context and the question.
	// The prompt template expects two %s placeholders: context, then question.
	PromptAnswerUser = "answer_user"

	// PromptExtractionSystem is the system prompt for structured extraction.
	// This prompt has no format placeholders.
	PromptExtractionSystem = "extraction_system"

	// PromptExtractDoors describes the door schedule record shape.
	// The prompt template expects a %s placeholder for the context.
	PromptExtractDoors = "extract_door_schedule"

	// PromptExtractRooms describes the room summary record shape.
	// The prompt template expects a %s placeholder for the context.
	PromptExtractRooms = "extract_room_summary"

	// PromptExtractEquipment describes the equipment list record shape.
	// The prompt template expects a %s placeholder for the context.
	PromptExtractEquipment = "extract_equipment_list"

	// PromptConflictReview asks for contradictions between excerpts.
	// The prompt template expects two %s placeholders: topic, then context.
	PromptConflictReview = "conflict_review"
)

// PromptExtractionFor returns the extraction prompt name for a schema.
func PromptExtractionFor(schema domain.Schema) string {
	return "extract_" + schema.String()
}
