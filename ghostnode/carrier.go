package ghostnode

import (
	"github.com/LashSesh/ghost-protocol/protocol"
	"github.com/LashSesh/ghost-protocol/stego"
)

// ImageCarrier adapts stego's LSB image embedding to protocol.Carrier.
// The on-wire payload is the whole modified cover image, from which
// Extract recovers the masked bytes directly, so info is unused.
type ImageCarrier struct {
	Cover []byte
}

func (ImageCarrier) Tag() protocol.CarrierTag { return protocol.CarrierImageLSB }

func (c ImageCarrier) Embed(masked []byte) (onWire []byte, info []byte, err error) {
	onWire, err = stego.EmbedImageBytes(masked, c.Cover)
	if err != nil {
		return nil, nil, err
	}
	return onWire, nil, nil
}

func (ImageCarrier) Extract(onWire []byte, _ []byte) ([]byte, error) {
	return stego.ExtractImageBytes(onWire)
}

// ZeroWidthCarrier adapts stego's zero-width-Unicode text embedding to
// protocol.Carrier. Embed appends zero-width code points to Base and
// hands back the UTF-8 bytes of the combined string as onWire; Extract
// reverses it directly from those bytes, so info is unused.
type ZeroWidthCarrier struct {
	Base string
}

func (ZeroWidthCarrier) Tag() protocol.CarrierTag { return protocol.CarrierZeroWidthText }

func (c ZeroWidthCarrier) Embed(masked []byte) (onWire []byte, info []byte, err error) {
	carrier := stego.EmbedZeroWidthText(masked, c.Base)
	return []byte(carrier), nil, nil
}

func (ZeroWidthCarrier) Extract(onWire []byte, _ []byte) ([]byte, error) {
	return stego.ExtractZeroWidthText(string(onWire))
}
