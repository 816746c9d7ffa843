// This is free and unencumbered software released into the public domain.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/openpgp/armor"
	"nullprogram.com/x/optparse"
	"nullprogram.com/x/pgpcore/openpgp"
)

// Print the message like fmt.Printf() and then os.Exit(1).
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "pgpdump: "+format+"\n", args...)
	os.Exit(1)
}

type config struct {
	armor   bool
	verbose bool
	out     string
	args    []string
}

func usage(w io.Writer) {
	bw := bufio.NewWriter(w)
	i := "  "
	f := func(s ...interface{}) {
		fmt.Fprintln(bw, s...)
	}
	f("Usage:")
	f(i, "pgpdump [-av] [-o FILE] [FILE]")
	f("Options:")
	f(i, "-a, --armor       input is ASCII-armored")
	f(i, "-o, --out FILE    write the last Literal Data packet's payload to FILE")
	f(i, "-v, --verbose     print framing details for each packet")
	f(i, "-h, --help        print this help message")
	bw.Flush()
}

func parse() *config {
	conf := config{}

	options := []optparse.Option{
		{"armor", 'a', optparse.KindNone},
		{"out", 'o', optparse.KindRequired},
		{"verbose", 'v', optparse.KindNone},
		{"help", 'h', optparse.KindNone},
	}

	results, rest, err := optparse.Parse(options, os.Args)
	if err != nil {
		usage(os.Stderr)
		fatal("%s", err)
	}
	for _, result := range results {
		switch result.Long {
		case "armor":
			conf.armor = true
		case "out":
			conf.out = result.Optarg
		case "verbose":
			conf.verbose = true
		case "help":
			usage(os.Stdout)
			os.Exit(0)
		}
	}

	conf.args = rest
	if len(conf.args) > 1 {
		fatal("too many arguments")
	}
	return &conf
}

func openInput(conf *config) io.Reader {
	var in io.Reader = os.Stdin
	if len(conf.args) == 1 {
		f, err := os.Open(conf.args[0])
		if err != nil {
			fatal("%s", err)
		}
		in = f
	}
	if !conf.armor {
		return in
	}
	block, err := armor.Decode(in)
	if err != nil {
		fatal("armor: %s", err)
	}
	return block.Body
}

func lengthFormName(form openpgp.LengthForm) string {
	switch form {
	case openpgp.LengthOneOctet:
		return "1-octet"
	case openpgp.LengthTwoOctet:
		return "2-octet"
	case openpgp.LengthFourOctet:
		return "4-octet"
	case openpgp.LengthIndeterminate:
		return "indeterminate"
	case openpgp.LengthPartial:
		return "partial"
	default:
		return "unknown"
	}
}

func describe(kind openpgp.PacketKind) string {
	switch k := kind.(type) {
	case *openpgp.PublicKeyPacket:
		return fmt.Sprintf("public-key algo=%s created=%d keyid=%X", k.Algo, k.CreatedAt, k.KeyID)
	case *openpgp.SecretKeyPacket:
		return fmt.Sprintf("secret-key algo=%s s2k_usage=%d", k.Public.Algo, k.S2KUsage)
	case *openpgp.PKESKPacket:
		return fmt.Sprintf("PKESK algo=%s keyid=%016X", k.Algo, openpgp.KeyIDUint64(k.KeyID))
	case *openpgp.LiteralDataPacket:
		return fmt.Sprintf("literal-data format=%c name=%q bytes=%d", k.Format, k.FileName, len(k.Data))
	case *openpgp.IPDPPacket:
		return fmt.Sprintf("IPDP ciphertext_bytes=%d", len(k.Ciphertext))
	case *openpgp.MDCPacket:
		return fmt.Sprintf("MDC digest=%X", k.Digest)
	case *openpgp.RawPacket:
		return fmt.Sprintf("raw tag=%d bytes=%d", k.TagID, len(k.Data))
	default:
		return "unrecognized packet kind"
	}
}

func main() {
	conf := parse()
	in := openInput(conf)

	data, err := io.ReadAll(in)
	if err != nil {
		fatal("%s", err)
	}

	rd := openpgp.NewReader(bytes.NewReader(data))
	var lastLiteral *openpgp.LiteralDataPacket
	count := 0
	for {
		pkt, err := rd.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			fatal("%s", err)
		}
		kind, err := pkt.Decode()
		if err != nil {
			fatal("packet %d: %s", count, err)
		}
		count++
		if conf.verbose {
			fmt.Fprintf(os.Stderr, "packet %d: tag=%d new_format=%v length_form=%s\n",
				count, pkt.Tag.TagID, pkt.Tag.NewFormat, lengthFormName(pkt.Tag.Form))
		}
		fmt.Printf("%d: %s\n", count, describe(kind))
		if lit, ok := kind.(*openpgp.LiteralDataPacket); ok {
			lastLiteral = lit
		}
	}

	if conf.out != "" {
		if lastLiteral == nil {
			fatal("--out (-o) requested but no Literal Data packet was found")
		}
		out, err := os.Create(conf.out)
		if err != nil {
			fatal("%s", err)
		}
		defer out.Close()
		if _, err := out.Write(lastLiteral.Data); err != nil {
			fatal("%s", err)
		}
	}
}
