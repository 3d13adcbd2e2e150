package extraction

import (
	"fmt"
	"strings"
)

func classifyPrompt(types []string, text string) string {
	return fmt.Sprintf(`You are a real estate document classifier. Analyze the following document text and classify it into one of these categories:

Categories: %s

Document text:
%s

Please return your classification in JSON format:
{
    "document_type": "one of the categories above",
    "confidence_score": 0.0-1.0,
    "reasoning": "Brief explanation of why you classified it this way"
}`, strings.Join(types, ", "), text)
}

func extractPrompt(dt DocumentType, text string) string {
	fields := make([]string, 0, len(dt.Fields))
	for _, f := range dt.Fields {
		fields = append(fields, fmt.Sprintf("%s (%s)", f.Name, f.Kind))
	}

	return fmt.Sprintf(`You are a real estate document processing expert. Extract the following information from this %s document:

Fields to extract: %s

Document text:
%s

Please return the extracted information in JSON format with the following structure:
{
    "document_type": "%s",
    "extracted_data": {
        "field_name": "value, or null when the field cannot be found"
    },
    "confidence_score": 0.0-1.0,
    "processing_notes": "Any issues or observations about the document quality or extraction"
}

Important guidelines:
- Only extract information that is clearly present in the document
- Use null for missing information
- Normalize dates to YYYY-MM-DD format
- Normalize currency amounts to numbers without symbols
- Return list fields as JSON arrays of strings
- Be precise and accurate`, dt.Name, strings.Join(fields, ", "), text, dt.Name)
}
