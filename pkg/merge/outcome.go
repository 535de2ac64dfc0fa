package merge

import "errors"

const (
	msgSuccess    = "PDF가 성공적으로 생성되어 다운로드되었습니다."
	msgNotFound   = "해당 자료에 대해 병합할 PDF 파일을 찾을 수 없습니다."
	msgGeneration = "PDF 생성 중 오류가 발생했습니다."
	msgUnexpected = "PDF 생성 중 예기치 않은 오류가 발생했습니다."
)

// Outcome returns the notification title and body for a finished job. Jobs
// that are still running have no outcome.
func Outcome(j Job) (title, body string, ok bool) {
	title = j.Request.Label()
	switch j.State {
	case StateSuccess:
		return title, msgSuccess, true
	case StateFailed:
		switch {
		case errors.Is(j.Err, ErrMaterialNotFound):
			return title, msgNotFound, true
		case unexpected(j.Err):
			return title, msgUnexpected, true
		default:
			return title, msgGeneration, true
		}
	}
	return "", "", false
}

// unexpected is true for failures that never produced an HTTP response.
func unexpected(err error) bool {
	var sc statusCoder
	var pe *payloadError
	return !errors.As(err, &sc) && !errors.As(err, &pe)
}
