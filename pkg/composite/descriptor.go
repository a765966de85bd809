//go:build tinygo

// Package composite provides the USB descriptors for both presentations:
// CDC (Serial) + HID joystick for the generic build, and the bare Xbox
// controller interface for the xbox build.
package composite

import (
	"machine/usb"
	"machine/usb/descriptor"
)

// Xbox controller identity.
const (
	XboxVendorID  = 0x045E
	XboxProductID = 0x0202

	// Xbox endpoints reuse the HID endpoint numbers so the CDC endpoints
	// stay untouched.
	XboxEndpointIn  = usb.HID_ENDPOINT_IN
	XboxEndpointOut = usb.HID_ENDPOINT_OUT
	XboxInterface   = 0
)

// JoystickHIDReportDescriptor describes the 19-byte joystick report. There
// is a single report, so no report ID.
var JoystickHIDReportDescriptor = descriptor.Append([][]byte{
	descriptor.HIDUsagePageGenericDesktop,
	descriptor.HIDUsageDesktopGamepad,
	descriptor.HIDCollectionApplication,
	// 13 buttons: square cross circle triangle l1 r1 l2 r2 select start l3 r3 guide
	descriptor.HIDUsagePageButton,
	descriptor.HIDUsageMinimum(1),
	descriptor.HIDUsageMaximum(13),
	descriptor.HIDLogicalMinimum(0),
	descriptor.HIDLogicalMaximum(1),
	descriptor.HIDReportSize(1),
	descriptor.HIDReportCount(13),
	descriptor.HIDInputDataVarAbs,
	descriptor.HIDReportCount(3),
	descriptor.HIDInputConstVarAbs,
	// Hat switch, 0..7 clockwise from up, 8 is out of range (null)
	descriptor.HIDUsagePageGenericDesktop,
	{0x09, 0x39}, // USAGE (Hat switch)
	descriptor.HIDLogicalMinimum(0),
	descriptor.HIDLogicalMaximum(7),
	descriptor.HIDReportSize(4),
	descriptor.HIDReportCount(1),
	{0x81, 0x42}, // INPUT (Data,Var,Abs,Null)
	descriptor.HIDReportCount(1),
	descriptor.HIDInputConstVarAbs,
	// Sticks: X, Y, Z, Rz, 0x80 centered
	descriptor.HIDLogicalMinimum(0),
	descriptor.HIDLogicalMaximum(255),
	descriptor.HIDUsageDesktopX,
	descriptor.HIDUsageDesktopY,
	descriptor.HIDUsageDesktopZ,
	descriptor.HIDUsageDesktopRz,
	descriptor.HIDReportSize(8),
	descriptor.HIDReportCount(4),
	descriptor.HIDInputDataVarAbs,
	// 12 pressure bytes
	{0x06, 0x00, 0xFF}, // USAGE_PAGE (Vendor Defined 0xFF00)
	{0x09, 0x20},       // USAGE (0x20)
	descriptor.HIDReportCount(12),
	descriptor.HIDInputDataVarAbs,
	descriptor.HIDCollectionEnd,
})

// JoystickUSBDescriptor is the complete descriptor of the generic build.
// It combines CDC (Serial) + HID (joystick).
var JoystickUSBDescriptor = descriptor.Descriptor{
	// Device descriptor: USB 2.0 Composite device
	Device: descriptor.DeviceCDC.Bytes(),

	// Configuration descriptor: All interfaces combined
	Configuration: descriptor.Append([][]byte{
		// Configuration header
		descriptor.ConfigurationCDCHID.Bytes(),
		// CDC interfaces
		descriptor.InterfaceAssociationCDC.Bytes(),
		descriptor.InterfaceCDCControl.Bytes(),
		descriptor.ClassSpecificCDCHeader.Bytes(),
		descriptor.ClassSpecificCDCACM.Bytes(),
		descriptor.ClassSpecificCDCUnion.Bytes(),
		descriptor.ClassSpecificCDCCallManagement.Bytes(),
		descriptor.EndpointEP1IN.Bytes(),
		descriptor.InterfaceCDCData.Bytes(),
		descriptor.EndpointEP2OUT.Bytes(),
		descriptor.EndpointEP3IN.Bytes(),
		// HID interface
		descriptor.InterfaceHID.Bytes(),
		// HID class descriptor, patched with the report descriptor length
		func() []byte {
			classHID := descriptor.ClassHID.Bytes()
			classHID[7] = byte(len(JoystickHIDReportDescriptor))
			classHID[8] = byte(len(JoystickHIDReportDescriptor) >> 8)
			return classHID
		}(),
		descriptor.EndpointEP4IN.Bytes(),
		descriptor.EndpointEP5OUT.Bytes(),
	}),

	// HID report descriptors by interface number
	HID: map[uint16][]byte{
		usb.HID_INTERFACE: JoystickHIDReportDescriptor,
	},
}

// XboxUSBDescriptor presents the adapter as an original Xbox controller:
// one interface of class 0x58 with an interrupt endpoint pair.
var XboxUSBDescriptor = descriptor.Descriptor{
	Device: []byte{
		0x12,       // bLength
		0x01,       // bDescriptorType (device)
		0x10, 0x01, // bcdUSB 1.10
		0x00,       // bDeviceClass (per interface)
		0x00,       // bDeviceSubClass
		0x00,       // bDeviceProtocol
		0x40,       // bMaxPacketSize0
		byte(XboxVendorID), byte(XboxVendorID >> 8),
		byte(XboxProductID), byte(XboxProductID >> 8),
		0x00, 0x01, // bcdDevice 1.00
		0x00,       // iManufacturer
		0x00,       // iProduct
		0x00,       // iSerialNumber
		0x01,       // bNumConfigurations
	},

	Configuration: []byte{
		// Configuration header
		0x09,       // bLength
		0x02,       // bDescriptorType (configuration)
		0x20, 0x00, // wTotalLength 32
		0x01,       // bNumInterfaces
		0x01,       // bConfigurationValue
		0x00,       // iConfiguration
		0x80,       // bmAttributes (bus powered)
		0x32,       // MaxPower 100 mA
		// Interface
		0x09,          // bLength
		0x04,          // bDescriptorType (interface)
		XboxInterface, // bInterfaceNumber
		0x00,          // bAlternateSetting
		0x02,          // bNumEndpoints
		0x58,          // bInterfaceClass (Xbox)
		0x42,          // bInterfaceSubClass
		0x00,          // bInterfaceProtocol
		0x00,          // iInterface
		// Endpoint IN
		0x07,                  // bLength
		0x05,                  // bDescriptorType (endpoint)
		0x80 | XboxEndpointIn, // bEndpointAddress
		0x03,                  // bmAttributes (interrupt)
		0x20, 0x00,            // wMaxPacketSize 32
		0x04,                  // bInterval 4 ms
		// Endpoint OUT
		0x07,            // bLength
		0x05,            // bDescriptorType (endpoint)
		XboxEndpointOut, // bEndpointAddress
		0x03,            // bmAttributes (interrupt)
		0x08, 0x00,      // wMaxPacketSize 8
		0x04,            // bInterval 4 ms
	},
}
