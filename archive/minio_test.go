package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, "reports/7/20240301T050000_Tech_Talk.docx", ObjectKey(7, "/srv/out/Tech_Talk.docx", at))
}
