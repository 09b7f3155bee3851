package config

import (
	"fmt"
	"os"
)

func Template() string {
	return muxTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template()), 0o600)
}

const muxTemplate = `protocol = "DSTI"
tai_utc_offset = 37
atst = true
sti_header = false
stat = 0
spid = 0
pad_to = 0
frames = 4
start_dflc = 0
start_seq = 0
metrics_addr = ""

[[streams]]
id = 1
stid = 1
tid = 0
tidext = 0
crc = false
size = 96

[[streams]]
id = 2
stid = 2
tid = 0
tidext = 0
crc = false
size = 144
`
