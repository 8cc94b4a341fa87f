// Command rv32shard loads a program description and executes it, printing
// the exit code and next pc from the resulting record's public values and,
// with -v, its per-stream event counts. It is a thin
// driver: program loading (normally an ELF reader) and result consumption
// (normally a prover front-end) are both out of scope for this core.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"rv32shard/pkg/executor"
	"rv32shard/pkg/isa"
	"rv32shard/pkg/program"
)

// programFile is the minimal on-disk program representation this driver
// understands: a flat, already-decoded instruction list plus an initial
// memory image. A real deployment would read an ELF binary and produce the
// same program.Program this decodes into.
type programFile struct {
	EntryPC      uint32 `json:"entry_pc"`
	Instructions []struct {
		Op string `json:"op"`
		A  uint32 `json:"a"`
		B  uint32 `json:"b"`
		C  uint32 `json:"c"`
	} `json:"instructions"`
	InitialMemory []struct {
		Addr  uint32 `json:"addr"`
		Value uint32 `json:"value"`
	} `json:"initial_memory"`
}

var mnemonics = map[string]isa.Opcode{
	"add": isa.ADD, "sub": isa.SUB, "xor": isa.XOR, "or": isa.OR, "and": isa.AND,
	"sll": isa.SLL, "srl": isa.SRL, "sra": isa.SRA, "slt": isa.SLT, "sltu": isa.SLTU,

	"addi": isa.ADDI, "xori": isa.XORI, "ori": isa.ORI, "andi": isa.ANDI,
	"slli": isa.SLLI, "srli": isa.SRLI, "srai": isa.SRAI, "slti": isa.SLTI, "sltiu": isa.SLTIU,

	"lb": isa.LB, "lh": isa.LH, "lw": isa.LW, "lbu": isa.LBU, "lhu": isa.LHU,

	"sb": isa.SB, "sh": isa.SH, "sw": isa.SW,

	"beq": isa.BEQ, "bne": isa.BNE, "blt": isa.BLT, "bge": isa.BGE, "bltu": isa.BLTU, "bgeu": isa.BGEU,

	"jal": isa.JAL, "jalr": isa.JALR, "lui": isa.LUI, "auipc": isa.AUIPC,

	"ecall": isa.ECALL, "ebreak": isa.EBREAK,

	"mul": isa.MUL, "mulh": isa.MULH, "mulsu": isa.MULSU, "mulu": isa.MULU,
	"div": isa.DIV, "divu": isa.DIVU, "rem": isa.REM, "remu": isa.REMU,
}

func loadProgram(path string) (*program.Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf programFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		return nil, err
	}

	insts := make([]isa.Instruction, len(pf.Instructions))
	for i, in := range pf.Instructions {
		op, ok := mnemonics[in.Op]
		if !ok {
			return nil, fmt.Errorf("rv32shard: unknown opcode mnemonic %q at instruction %d", in.Op, i)
		}
		insts[i] = isa.Instruction{Opcode: op, A: in.A, B: in.B, C: in.C}
	}

	mem := make([]program.MemoryEntry, len(pf.InitialMemory))
	for i, e := range pf.InitialMemory {
		mem[i] = program.MemoryEntry{Addr: e.Addr, Value: e.Value}
	}

	return program.New(pf.EntryPC, insts, mem, nil), nil
}

func main() {
	log.SetFlags(0)
	filename := flag.String("f", "", "program file to run (JSON)")
	maxCycles := flag.Uint64("max-cycles", 0, "step budget (0 = unbounded)")
	verbose := flag.Bool("v", false, "print per-stream event counts")
	flag.Parse()
	if *filename == "" {
		log.Fatal("usage: rv32shard [-v] [-max-cycles N] -f <program-file>")
	}

	p, err := loadProgram(*filename)
	if err != nil {
		log.Fatal(err)
	}

	rec, err := executor.Execute(p, executor.Options{MaxCycles: *maxCycles})
	if err != nil {
		if fault, ok := err.(*executor.Fault); ok {
			log.Printf("rv32shard: halted with fault: %v", fault)
		} else {
			log.Fatal(err)
		}
	}

	log.Printf("rv32shard: exit_code=%d next_pc=%#x", rec.PublicValues.ExitCode, rec.PublicValues.NextPC)
	if *verbose {
		for name, count := range rec.Stats() {
			log.Printf("rv32shard: %s=%d", name, count)
		}
	}
}
