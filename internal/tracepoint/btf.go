//go:build linux

package tracepoint

import (
	"debug/elf"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cilium/ebpf/btf"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	kernelBTFPath     = "/sys/kernel/btf/vmlinux"
	btfSharePath      = "/etc/rtsl/"
	btfVendorPath     = "/etc/rtsl/btf/"
	userCustomBTFPath = "/etc/rtsl/custom_btf/"
)

func kernelRelease() (string, error) {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return "", fmt.Errorf("uname failed: %w", err)
	}
	return unix.ByteSliceToString(uname.Release[:]), nil
}

// loadBTFSpecOrNil resolves a BTF spec for the running kernel so CO-RE
// field accesses in bpf/rtsl.c relocate correctly: the kernel's own exposed
// BTF first, then a vmlinux-<release> file under the /etc/rtsl search
// paths, and nil (raw spec) if nothing loads.
func loadBTFSpecOrNil() *btf.Spec {
	if _, err := os.Stat(kernelBTFPath); err == nil {
		spec, err := loadBTFFile(kernelBTFPath)
		if err == nil {
			return spec
		}
		log.Debugf("rtsl: load btf from %s: %v", kernelBTFPath, err)
	}

	for _, dir := range []string{btfSharePath, btfVendorPath, userCustomBTFPath} {
		file, err := findBTFFile(dir)
		if err != nil {
			continue
		}
		spec, err := loadBTFFile(file)
		if err != nil {
			log.Debugf("rtsl: load btf from %s: %v", file, err)
			continue
		}
		return spec
	}

	log.Warnf("rtsl: no BTF file found under %s, %s, %s; falling back to kernel-exposed BTF",
		btfSharePath, btfVendorPath, userCustomBTFPath)
	return nil
}

func findBTFFile(dir string) (string, error) {
	release, err := kernelRelease()
	if err != nil {
		return "", err
	}

	file := filepath.Join(filepath.Clean(dir), fmt.Sprintf("vmlinux-%s", release))
	if _, err := os.Stat(file); err != nil {
		return "", fmt.Errorf("btf file %s not found: %w", file, err)
	}
	return file, nil
}

func loadBTFFile(file string) (*btf.Spec, error) {
	fh, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	spec, err := btf.LoadSpecFromReader(fh)
	if err == nil {
		return spec, nil
	}

	elfFile, elfErr := safeParseELF(fh)
	if elfErr != nil {
		return nil, fmt.Errorf("read bare elf: %w", elfErr)
	}

	var btfSection *elf.Section
	for _, sec := range elfFile.Sections {
		if sec.Name == ".BTF" {
			btfSection = sec
			break
		}
	}
	if btfSection == nil {
		return nil, fmt.Errorf("read bare elf: no .BTF section in %s", file)
	}
	if btfSection.ReaderAt == nil {
		return nil, fmt.Errorf("compressed BTF is not supported")
	}

	return btf.LoadSpecFromReader(btfSection.ReaderAt)
}

func safeParseELF(r io.ReaderAt) (safe *elf.File, err error) {
	defer func() {
		if p := recover(); p != nil {
			safe, err = nil, fmt.Errorf("reading ELF file panicked: %v", p)
		}
	}()
	return elf.NewFile(r)
}
