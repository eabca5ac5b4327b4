package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/employee-directory/internal/types"
)

// profilePictureField is the file field name on the employees collection.
const profilePictureField = "profile_picture"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody encodes in as multipart/form-data. Fields omitted from the JSON
// encoding are omitted here too; lists are written as repeated keys and
// booleans as "true"/"false". The profile picture is streamed as a file part.
func multipartBody(in types.EmployeeInput) (io.Reader, string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, "", err
	}
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, "", err
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, key := range keys {
		for _, value := range formValues(fields[key]) {
			if err := w.WriteField(key, value); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
			}
		}
	}

	if pic := in.ProfilePicture; pic != nil && pic.Content != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(profilePictureField), quoteEscaper.Replace(pic.Filename)))
		contentType := pic.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, pic.Content); err != nil {
			return nil, "", fmt.Errorf("failed to copy file content: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func formValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, formValues(item)...)
		}
		return out
	case bool:
		return []string{strconv.FormatBool(val)}
	case float64:
		return []string{strconv.FormatFloat(val, 'f', -1, 64)}
	case string:
		return []string{val}
	default:
		return []string{fmt.Sprint(val)}
	}
}
