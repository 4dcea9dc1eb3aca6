package codegen

import "github.com/minond/sourdough/internal/code"

// dedupeConsts drops any constant-pool entry whose label was already seen
// (spec.md §3, §4.6: "drop any second Value with a label already seen"),
// returning the surviving entries and a remap table for remapConstRefs.
// The remap table is always empty: a dropped entry shares its label with
// the entry that survives, so no reference needs rewriting. Generated
// labels are always unique (see ir.newLambdaPtr / freshLabel), so in practice this never fires —
// it exists as the safety net the pass description calls for.
func dedupeConsts(consts []code.ConstValue) ([]code.ConstValue, map[string]string) {
	seen := map[string]bool{}
	remap := map[string]string{}
	out := make([]code.ConstValue, 0, len(consts))
	for _, c := range consts {
		if seen[c.Label] {
			continue
		}
		seen[c.Label] = true
		out = append(out, c)
	}
	return out, remap
}

// remapConstRefs rewrites every Push(_, Id(label)/Scope(label)) operand
// that named a constant dropped by dedupeConsts to instead name the
// surviving label.
func remapConstRefs(out code.Output, remap map[string]string) code.Output {
	if len(remap) == 0 {
		return out
	}
	result := make(code.Output, len(out))
	copy(result, out)
	for i, o := range result {
		if o.Kind != code.OGrouped || o.Item.IsLabel {
			continue
		}
		instr := o.Item.Instr
		if instr.Op != code.Push {
			continue
		}
		if instr.Value.Kind != code.KId && instr.Value.Kind != code.KScope {
			continue
		}
		canon, ok := remap[instr.Value.Label]
		if !ok {
			continue
		}
		instr.Value.Label = canon
		result[i].Item = code.InstrItem(instr)
	}
	return result
}

// framed rewrites every FrameInit into Frame (spec.md §4.6 "framed" pass):
// FrameInit marks where a lambda body's call frame opens during
// generation, and Frame is the opcode the VM actually executes.
func framed(out code.Output) code.Output {
	result := make(code.Output, len(out))
	copy(result, out)
	for i, o := range result {
		if o.Kind != code.OGrouped || o.Item.IsLabel {
			continue
		}
		if o.Item.Instr.Op != code.FrameInit {
			continue
		}
		instr := o.Item.Instr
		instr.Op = code.Frame
		result[i].Item = code.InstrItem(instr)
	}
	return result
}

// labeled injects a section-header Label for every section (main
// included) whose first emitted element is not already a label, so that
// every section remains addressable by its own name even when the
// generator never explicitly named its entry point (spec.md §4.6
// "labeled" pass: "prepend Label(name) to every section").
func labeled(out code.Output) code.Output {
	headerSeen := map[string]bool{}
	for _, o := range out {
		if o.Kind != code.OGrouped {
			continue
		}
		if _, known := headerSeen[o.Section]; !known {
			headerSeen[o.Section] = o.Item.IsLabel
		}
	}

	result := make(code.Output, 0, len(out)+len(headerSeen))
	inserted := map[string]bool{}
	for _, o := range out {
		if o.Kind == code.OGrouped && !headerSeen[o.Section] && !inserted[o.Section] {
			result = append(result, code.Grouped(o.Section, code.LabelItem(o.Section)))
			inserted[o.Section] = true
		}
		result = append(result, o)
	}
	return result
}

// sectioned flattens the Output stream into the VM's final code list: the
// main section first, an implicit Halt marking its end, every other
// section in first-seen order, and finally the constant pool (spec.md §3,
// §4.6 "sectioned" pass).
func sectioned(out code.Output) []code.Final {
	bySection := map[code.Section][]code.GroupItem{}
	var order []code.Section
	var values []code.ConstValue

	for _, o := range out {
		switch o.Kind {
		case code.OGrouped:
			if _, ok := bySection[o.Section]; !ok {
				order = append(order, o.Section)
			}
			bySection[o.Section] = append(bySection[o.Section], o.Item)
		case code.OValue:
			values = append(values, o.Value)
		}
	}

	var final []code.Final
	appendSection := func(name code.Section) {
		for _, item := range bySection[name] {
			if item.IsLabel {
				final = append(final, code.Final{Kind: code.FLabel, Label: item.Label})
			} else {
				final = append(final, code.Final{Kind: code.FInstr, Instr: item.Instr})
			}
		}
	}

	appendSection(code.MainSection)
	final = append(final, code.Final{Kind: code.FInstr, Instr: code.Instr{Op: code.Halt}})
	for _, name := range order {
		if name == code.MainSection {
			continue
		}
		appendSection(name)
	}
	for _, v := range values {
		final = append(final, code.Final{Kind: code.FValue, Value: v})
	}
	return final
}
