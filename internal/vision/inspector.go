// Package vision abstracts the remote image classifier behind a small
// capability interface so the classification pipeline can be exercised
// without network access.
package vision

import "context"

// InspectionPrompt is the fixed instruction sent with every image. The
// sentinel phrase "No maintenance issues detected" marks a clean image.
const InspectionPrompt = "You are a maintenance inspector. Analyze this image and provide a brief 2-3 sentence summary of any maintenance issues. " +
	"Focus on: fans, lights, furniture, or electronics. " +
	"If damaged: state the item and specific problem (e.g., 'Ceiling fan blade is severely bent and broken'). " +
	"If no issues: respond with exactly 'No maintenance issues detected'. " +
	"Keep your response concise and under 100 words."

// Inspector turns an image into a natural-language issue summary.
type Inspector interface {
	Inspect(ctx context.Context, imagePath string) (string, error)
}
