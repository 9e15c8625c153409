package hwio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var reg32Type = reflect.TypeOf(Reg32{})

type regTag struct {
	offset int // -1 if the register isn't part of a bank
	bank   int
	reset  uint32
	rwmask uint32
	wcb    string
}

// parseTag parses the "hwio" struct tag of register field name:
//
//	offset=0x12     Address of the register within its bank (0x00-0xFF).
//	                Without offset, the register isn't mapped by MapBank.
//	bank=N          Bank number, default to zero.
//	reset=0x1234    Value after InitRegs.
//	rwmask=0xFF00   Writable bits, default to all.
//	wcb[=Method]    Bind WriteCb to the given method of the bank, by
//	                default Write followed by the upper-cased field name.
func parseTag(name, tag string) (regTag, error) {
	rt := regTag{offset: -1, rwmask: 0xFFFFFFFF}

	for _, opt := range strings.Split(tag, ",") {
		if opt == "" {
			continue
		}
		key, val, hasVal := strings.Cut(opt, "=")
		switch key {
		case "offset", "bank", "reset", "rwmask":
			if !hasVal {
				return rt, fmt.Errorf("%s: option %q needs a value", name, key)
			}
			n, err := strconv.ParseUint(val, 0, 32)
			if err != nil {
				return rt, fmt.Errorf("%s: option %q: %w", name, key, err)
			}
			switch key {
			case "offset":
				if n > 0xFF {
					return rt, fmt.Errorf("%s: offset 0x%x doesn't fit in 8 bits", name, n)
				}
				rt.offset = int(n)
			case "bank":
				rt.bank = int(n)
			case "reset":
				rt.reset = uint32(n)
			case "rwmask":
				rt.rwmask = uint32(n)
			}
		case "wcb":
			rt.wcb = "Write" + strings.ToUpper(name)
			if hasVal {
				rt.wcb = val
			}
		default:
			return rt, fmt.Errorf("%s: unknown option %q", name, key)
		}
	}
	return rt, nil
}

// forEachReg calls fn for each tagged Reg32 field of the struct pointed to
// by data.
func forEachReg(data any, fn func(name string, reg *Reg32, tag regTag) error) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("hwio: expected pointer to struct, got %T", data)
	}

	sv := v.Elem()
	for i := range sv.NumField() {
		f := sv.Type().Field(i)
		tagstr, ok := f.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		if f.Type != reg32Type || !f.IsExported() {
			return fmt.Errorf("hwio: field %s must be an exported Reg32", f.Name)
		}
		tag, err := parseTag(f.Name, tagstr)
		if err != nil {
			return fmt.Errorf("hwio: %w", err)
		}
		if err := fn(f.Name, sv.Field(i).Addr().Interface().(*Reg32), tag); err != nil {
			return err
		}
	}
	return nil
}

// InitRegs initializes the registers of the struct pointed to by data from
// their "hwio" tags: name, reset value, writable bits and callbacks, which
// are bound to methods of data.
func InitRegs(data any) error {
	v := reflect.ValueOf(data)
	return forEachReg(data, func(name string, reg *Reg32, tag regTag) error {
		*reg = Reg32{
			Name:   name,
			Value:  tag.reset,
			RoMask: ^tag.rwmask,
		}
		if tag.wcb == "" {
			return nil
		}

		m := v.MethodByName(tag.wcb)
		if !m.IsValid() {
			return fmt.Errorf("hwio: %s: missing write callback %s", name, tag.wcb)
		}
		cb, ok := m.Interface().(func(uint32, uint32))
		if !ok {
			return fmt.Errorf("hwio: %s: write callback %s has type %s", name, tag.wcb, m.Type())
		}
		reg.WriteCb = cb
		return nil
	})
}

func MustInitRegs(data any) {
	if err := InitRegs(data); err != nil {
		panic(err)
	}
}

type bankReg struct {
	offset uint8
	regPtr *Reg32
}

// bankGetRegs returns the registers of bank bankNum in data.
func bankGetRegs(data any, bankNum int) ([]bankReg, error) {
	var regs []bankReg
	err := forEachReg(data, func(_ string, reg *Reg32, tag regTag) error {
		if tag.offset >= 0 && tag.bank == bankNum {
			regs = append(regs, bankReg{offset: uint8(tag.offset), regPtr: reg})
		}
		return nil
	})
	return regs, err
}
