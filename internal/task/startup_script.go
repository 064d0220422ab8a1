package task

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"strings"
	"text/template"
)

const scriptPreamble = "#!/bin/bash\nset -ex\n"

const portForwardTemplate = `
# expose configured instance ports
{{- range .Ports }}
iptables -t nat -A PREROUTING -p tcp --dport {{ .External }} -j REDIRECT --to-port {{ .Internal }}
{{- end }}
iptables-save > /etc/iptables/rules.v4 || true
`

const ephemeralStorageTemplate = `
# assemble ephemeral drives and bind mount workspace directories
EPHEMERAL_DISKS=$(ls /dev/nvme*n1 2>/dev/null | grep -v "$(findmnt -n -o SOURCE / | sed 's/p[0-9]*$//')" || true)
if [ -n "$EPHEMERAL_DISKS" ]; then
    mkdir -p /ephemeral
    if [ "$(echo "$EPHEMERAL_DISKS" | wc -l)" -gt 1 ]; then
        mdadm --create /dev/md0 --level=0 --force --raid-devices=$(echo "$EPHEMERAL_DISKS" | wc -l) $EPHEMERAL_DISKS
        mkfs.ext4 -F /dev/md0
        mount /dev/md0 /ephemeral
    else
        mkfs.ext4 -F $EPHEMERAL_DISKS
        mount $EPHEMERAL_DISKS /ephemeral
    fi
fi
{{- range $target, $source := .Mounts }}
mkdir -p /ephemeral{{ $source }} {{ $target }}
mount --bind /ephemeral{{ $source }} {{ $target }}
{{- end }}
`

const persistentStorageTemplate = `
# mount the attached persistent volume
PERSISTENT_DEVICE=$(ls /dev/disk/by-id/*{{ .VolumeName }}* 2>/dev/null | head -n 1)
if [ -n "$PERSISTENT_DEVICE" ]; then
    if ! blkid "$PERSISTENT_DEVICE" >/dev/null 2>&1; then
        mkfs.ext4 "$PERSISTENT_DEVICE"
    fi
    mkdir -p {{ .MountDir }}
    mount "$PERSISTENT_DEVICE" {{ .MountDir }}
fi
`

const containerImageTemplate = `
# launch the task container
docker pull {{ .ImageName }}
docker run -d --restart unless-stopped --gpus all --network host {{ if .RunOptions }}{{ .RunOptions }} {{ end }}{{ .ImageName }}
`

const bootstrapTemplate = `#!/bin/bash
set -e
echo "{{ .Encoded }}" | base64 -d | gunzip > /tmp/startup_script.sh
chmod +x /tmp/startup_script.sh
/tmp/startup_script.sh > /var/log/startup_script.log 2>&1
`

// ScriptBuilder assembles the instance startup script out of independent
// segments. Segments render in the order they are injected; the caller
// decides which apply to a given task.
type ScriptBuilder struct {
	segments []string
}

func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{}
}

func (b *ScriptBuilder) InjectPorts(ports []PortMapping) error {
	if len(ports) == 0 {
		return nil
	}
	return b.renderSegment("ports", portForwardTemplate, struct{ Ports []PortMapping }{ports})
}

func (b *ScriptBuilder) InjectEphemeralStorage(cfg *EphemeralStorageConfig) error {
	if cfg == nil {
		return nil
	}
	return b.renderSegment("ephemeral_storage", ephemeralStorageTemplate, cfg)
}

func (b *ScriptBuilder) InjectPersistentStorage(volumeName, mountDir string) error {
	if volumeName == "" || mountDir == "" {
		return nil
	}
	data := struct{ VolumeName, MountDir string }{volumeName, mountDir}
	return b.renderSegment("persistent_storage", persistentStorageTemplate, data)
}

func (b *ScriptBuilder) InjectContainerImage(cfg *ContainerImageConfig) error {
	if cfg == nil || cfg.ImageName == "" {
		return nil
	}
	return b.renderSegment("container_image", containerImageTemplate, cfg)
}

// InjectCustomScript appends the user's own startup script verbatim,
// stripping a leading shebang so the preamble stays in control.
func (b *ScriptBuilder) InjectCustomScript(script string) {
	script = strings.TrimSpace(script)
	if script == "" {
		return
	}
	if strings.HasPrefix(script, "#!") {
		if _, rest, found := strings.Cut(script, "\n"); found {
			script = rest
		} else {
			return
		}
	}
	b.segments = append(b.segments, script+"\n")
}

func (b *ScriptBuilder) renderSegment(name, tmpl string, data interface{}) error {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed parse %s script template, error: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed render %s script segment, error: %w", name, err)
	}
	b.segments = append(b.segments, buf.String())
	return nil
}

// Build returns the complete startup script.
func (b *ScriptBuilder) Build() string {
	return scriptPreamble + strings.Join(b.segments, "")
}

// BuildBootstrap gzips and base64-encodes the assembled script and wraps
// it in a small decoder stub, keeping the submitted payload under the
// provider's startup script size limit.
func (b *ScriptBuilder) BuildBootstrap() (string, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(b.Build())); err != nil {
		return "", fmt.Errorf("failed compress startup script, error: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed compress startup script, error: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	t, err := template.New("bootstrap").Parse(bootstrapTemplate)
	if err != nil {
		return "", fmt.Errorf("failed parse bootstrap template, error: %w", err)
	}
	var out bytes.Buffer
	if err := t.Execute(&out, struct{ Encoded string }{encoded}); err != nil {
		return "", fmt.Errorf("failed render bootstrap script, error: %w", err)
	}
	return out.String(), nil
}

// BuildStartupScript renders the full startup script for a task config,
// already wrapped in the bootstrap stub. persistentVolumeName is the
// resolved volume name when the task attaches or creates a disk.
func BuildStartupScript(cfg *TaskConfig, persistentVolumeName string) (string, error) {
	builder := NewScriptBuilder()
	if err := builder.InjectPorts(cfg.Ports); err != nil {
		return "", err
	}
	if err := builder.InjectEphemeralStorage(cfg.EphemeralStorageConfig); err != nil {
		return "", err
	}
	if cfg.PersistentStorage != nil {
		if err := builder.InjectPersistentStorage(persistentVolumeName, cfg.PersistentStorage.MountDir); err != nil {
			return "", err
		}
	}
	if err := builder.InjectContainerImage(cfg.ContainerImage); err != nil {
		return "", err
	}
	builder.InjectCustomScript(cfg.StartupScript)
	return builder.BuildBootstrap()
}
