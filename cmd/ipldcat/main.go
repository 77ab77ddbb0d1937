// Command ipldcat decodes a block with one IPLD codec and prints it,
// optionally re-encoding it with another. It exists to exercise the
// codec/multicodec wiring end to end from the command line, the way
// dasl-cli exercises drisl and masl in the teacher repo.
package main

import (
	"flag"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/ipld/libipld/dagcbor"
	"github.com/ipld/libipld/dagjson"
	"github.com/ipld/libipld/dagpb"
	"github.com/ipld/libipld/ipld"
	"github.com/ipld/libipld/raw"
)

func main() {
	var (
		inCodec  = flag.String("in", "dag-cbor", "input codec: dag-cbor, dag-json, dag-pb, or raw")
		outCodec = flag.String("out", "", "if set, re-encode with this codec and write the result to stdout instead of printing a summary")
		links    = flag.Bool("links", false, "print referenced CIDs instead of the decoded value")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ipldcat [-in CODEC] [-out CODEC | -links] <file> (CODEC: dag-cbor, dag-json, dag-pb, raw)")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fatal(err)
	}

	in, err := codecByName(*inCodec)
	if err != nil {
		fatal(err)
	}

	n, err := in.Decode(data)
	if err != nil {
		fatal(fmt.Errorf("decode: %w", err))
	}

	if *links {
		for _, c := range ipld.Links(n) {
			fmt.Println(c.String())
		}
		return
	}

	if *outCodec != "" {
		out, err := codecByName(*outCodec)
		if err != nil {
			fatal(err)
		}
		encoded, err := out.Encode(n)
		if err != nil {
			fatal(fmt.Errorf("encode: %w", err))
		}
		os.Stdout.Write(encoded)
		return
	}

	summary, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(debugView(n), "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(summary))
}

func codecByName(name string) (ipld.Codec, error) {
	switch name {
	case "dag-cbor":
		return dagcbor.Codec{}, nil
	case "dag-json":
		return dagjson.Codec{}, nil
	case "dag-pb":
		return dagpb.Codec{}, nil
	case "raw":
		return raw.Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// debugView renders a Node as plain Go values (not IPLD-data-model
// aware) purely for human-readable debug output; it is not a codec and
// makes no canonicalization claims.
func debugView(n ipld.Node) any {
	switch n.Kind() {
	case ipld.KindNull:
		return nil
	case ipld.KindBool:
		return n.AsBool()
	case ipld.KindInt:
		return n.AsInt().String()
	case ipld.KindFloat:
		return n.AsFloat()
	case ipld.KindString:
		return n.AsString()
	case ipld.KindBytes:
		return fmt.Sprintf("%x", n.AsBytes())
	case ipld.KindLink:
		return map[string]string{"/": n.AsLink().String()}
	case ipld.KindList:
		items := n.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = debugView(item)
		}
		return out
	case ipld.KindMap:
		m := n.AsMap()
		out := make(map[string]any, m.Len())
		m.Range(func(k string, v ipld.Node) bool {
			out[k] = debugView(v)
			return true
		})
		return out
	default:
		return nil
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "ipldcat:", err)
	os.Exit(1)
}
