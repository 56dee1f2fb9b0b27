package render

import (
	"fmt"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/battles-core/core/corerr"
)

// VulkanSurface is the readback-capable backend (§4.C optional readback
// path): an offscreen color image plus a 3-entry staging-buffer ring,
// modeled directly on the teacher's VulkanBackend offscreen + staging
// pipeline. The chroma-key pass itself runs on the CPU reference path
// (compositeChromaKey) before upload — the fragment-shader path lives
// in EbitenSurface, which is the present-path default; this backend
// exists to exercise the real copy-to-staging/map/unmap cycle the
// readback ring buffer models.
type VulkanSurface struct {
	mu sync.Mutex

	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue
	queueFamily    uint32
	commandPool    vk.CommandPool

	width, height int
	colorImage    vk.Image
	colorMemory   vk.DeviceMemory

	stagingBuffers [ReadbackRingSize]vk.Buffer
	stagingMemory  [ReadbackRingSize]vk.DeviceMemory
	stagingSize    vk.DeviceSize

	ring        *ReadbackRing
	frameNumber uint64
	cpuFrame    []byte

	initialized bool
}

// NewVulkanSurface initializes a Vulkan instance/device and allocates
// the offscreen image plus the staging-buffer ring. If Vulkan cannot be
// initialized (no ICD present, headless CI, etc.) it returns a
// GpuFatal error — callers fall back to EbitenSurface alone and simply
// never enable the readback path (§4.C allows the present path to be
// the only path on a live frame).
func NewVulkanSurface(width, height int) (*VulkanSurface, error) {
	s := &VulkanSurface{
		width:       width,
		height:      height,
		ring:        NewReadbackRing(),
		stagingSize: vk.DeviceSize(width * height * 4),
		cpuFrame:    make([]byte, width*height*4),
	}
	if err := s.initVulkan(); err != nil {
		return nil, corerr.New("render.NewVulkanSurface", corerr.GpuFatal, err)
	}
	s.initialized = true
	return s, nil
}

func (s *VulkanSurface) initVulkan() error {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("load vulkan library: %w", err)
	}
	if err := vk.Init(); err != nil {
		return fmt.Errorf("init vulkan loader: %w", err)
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   "battles-core compositor\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "battles-core\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	instInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&instInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	s.instance = instance
	vk.InitInstance(instance)

	if err := s.selectPhysicalDevice(); err != nil {
		return err
	}
	if err := s.createDevice(); err != nil {
		return err
	}
	if err := s.createCommandPool(); err != nil {
		return err
	}
	if err := s.createOffscreenImage(); err != nil {
		return err
	}
	return s.createStagingBuffers()
}

func (s *VulkanSurface) selectPhysicalDevice() error {
	var count uint32
	vk.EnumeratePhysicalDevices(s.instance, &count, nil)
	if count == 0 {
		return fmt.Errorf("no vulkan-capable gpu found")
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(s.instance, &count, devices)

	for _, d := range devices {
		var qfCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(d, &qfCount, nil)
		qfs := make([]vk.QueueFamilyProperties, qfCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(d, &qfCount, qfs)
		for i, qf := range qfs {
			qf.Deref()
			if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				s.physicalDevice = d
				s.queueFamily = uint32(i)
				return nil
			}
		}
	}
	return fmt.Errorf("no gpu with a graphics queue found")
}

func (s *VulkanSurface) createDevice() error {
	priority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: s.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{priority},
	}
	devInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}
	var device vk.Device
	if res := vk.CreateDevice(s.physicalDevice, &devInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("vkCreateDevice failed: %d", res)
	}
	s.device = device
	var queue vk.Queue
	vk.GetDeviceQueue(device, s.queueFamily, 0, &queue)
	s.queue = queue
	return nil
}

func (s *VulkanSurface) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: s.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(s.device, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("vkCreateCommandPool failed: %d", res)
	}
	s.commandPool = pool
	return nil
}

func (s *VulkanSurface) createOffscreenImage() error {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.FormatR8g8b8a8Unorm,
		Extent: vk.Extent3D{
			Width:  uint32(s.width),
			Height: uint32(s.height),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit),
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var image vk.Image
	if res := vk.CreateImage(s.device, &imageInfo, nil, &image); res != vk.Success {
		return fmt.Errorf("vkCreateImage failed: %d", res)
	}
	s.colorImage = image

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(s.device, image, &reqs)
	reqs.Deref()
	typeIdx, err := s.findMemoryType(reqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIdx,
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(s.device, &allocInfo, nil, &mem); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory (offscreen image) failed: %d", res)
	}
	s.colorMemory = mem
	vk.BindImageMemory(s.device, image, mem, 0)
	return nil
}

// createStagingBuffers allocates ReadbackRingSize host-visible buffers,
// one per ring slot, so a copy into slot N never contends with a
// pending map on slot N-1 (§3).
func (s *VulkanSurface) createStagingBuffers() error {
	for i := 0; i < ReadbackRingSize; i++ {
		bufInfo := vk.BufferCreateInfo{
			SType:       vk.StructureTypeBufferCreateInfo,
			Size:        s.stagingSize,
			Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
			SharingMode: vk.SharingModeExclusive,
		}
		var buf vk.Buffer
		if res := vk.CreateBuffer(s.device, &bufInfo, nil, &buf); res != vk.Success {
			return fmt.Errorf("vkCreateBuffer (staging %d) failed: %d", i, res)
		}

		var reqs vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(s.device, buf, &reqs)
		reqs.Deref()
		typeIdx, err := s.findMemoryType(reqs.MemoryTypeBits,
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
		if err != nil {
			return err
		}
		allocInfo := vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  reqs.Size,
			MemoryTypeIndex: typeIdx,
		}
		var mem vk.DeviceMemory
		if res := vk.AllocateMemory(s.device, &allocInfo, nil, &mem); res != vk.Success {
			return fmt.Errorf("vkAllocateMemory (staging %d) failed: %d", i, res)
		}
		vk.BindBufferMemory(s.device, buf, mem, 0)

		s.stagingBuffers[i] = buf
		s.stagingMemory[i] = mem
	}
	return nil
}

func (s *VulkanSurface) findMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(s.physicalDevice, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		if typeFilter&(1<<i) != 0 && memProps.MemoryTypes[i].PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no suitable vulkan memory type")
}

// Render composites the frame on the CPU reference path (the GPU
// fragment-shader path is EbitenSurface's responsibility) and, through
// the readback ring's Submit, copies the result into the staging buffer
// of the next ring slot, ready for PollReadback. When that slot is not
// Free, Submit returns ErrRingBusy and the frame is not kept.
func (s *VulkanSurface) Render(frame Frame, params ChromaKeyParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cpuFrame) != len(frame.RGBA) {
		s.cpuFrame = make([]byte, len(frame.RGBA))
	}
	copy(s.cpuFrame, frame.RGBA)
	compositeChromaKey(s.cpuFrame, params)
	s.frameNumber++

	err := s.ring.Submit(s.frameNumber, func() error {
		return s.copyToStaging(s.cpuFrame)
	})
	if err != nil {
		// Submit did not advance the ring, so the frame number does not
		// advance either: staging slot (frameNumber-1)%N stays the ring
		// slot that Submit fills.
		s.frameNumber--
	}
	return err
}

// copyToStaging maps the next ring slot's staging buffer directly
// (host-coherent memory, so no explicit flush is needed) and memcpys
// the composited frame into it. This stands in for the GPU's
// copy_texture_to_buffer when the compositor output already lives on
// the CPU (§4.C optional readback path).
func (s *VulkanSurface) copyToStaging(data []byte) error {
	slot := int(s.frameNumber-1) % ReadbackRingSize
	var mapped unsafe.Pointer
	if res := vk.MapMemory(s.device, s.stagingMemory[slot], 0, s.stagingSize, 0, &mapped); res != vk.Success {
		return fmt.Errorf("vkMapMemory (staging %d) failed: %d", slot, res)
	}
	dst := unsafe.Slice((*byte)(mapped), len(data))
	copy(dst, data)
	vk.UnmapMemory(s.device, s.stagingMemory[slot])
	return nil
}

// PollReadback drains the readback ring. Because copyToStaging already
// wrote and unmapped host-coherent memory synchronously, the
// async-map step here only needs to re-map the same memory for the
// CPU-side read and immediately reports completion — there is no GPU
// fence to wait on since the "GPU copy" was itself a CPU memcpy. This
// preserves the ring's Free→InFlight→MappingPending→Mapped→Free shape
// (§3) while being honest that this backend's "GPU" work is nil-cost.
func (s *VulkanSurface) PollReadback() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ring.Poll(func(frameNumber uint64) (func() (bool, []byte, error), error) {
		slot := int(frameNumber-1) % ReadbackRingSize
		return func() (bool, []byte, error) {
			var mapped unsafe.Pointer
			if res := vk.MapMemory(s.device, s.stagingMemory[slot], 0, s.stagingSize, 0, &mapped); res != vk.Success {
				return false, nil, fmt.Errorf("vkMapMemory (readback %d) failed: %d", slot, res)
			}
			out := make([]byte, s.stagingSize)
			copy(out, unsafe.Slice((*byte)(mapped), s.stagingSize))
			vk.UnmapMemory(s.device, s.stagingMemory[slot])
			return true, out, nil
		}, nil
	})
}

func (s *VulkanSurface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width == s.width && height == s.height {
		return nil
	}
	s.destroyOffscreenResources()
	s.width, s.height = width, height
	s.stagingSize = vk.DeviceSize(width * height * 4)
	s.cpuFrame = make([]byte, width*height*4)
	if err := s.createOffscreenImage(); err != nil {
		return corerr.New("render.VulkanSurface.Resize", corerr.GpuFatal, err)
	}
	if err := s.createStagingBuffers(); err != nil {
		return corerr.New("render.VulkanSurface.Resize", corerr.GpuFatal, err)
	}
	s.ring = NewReadbackRing()
	return nil
}

func (s *VulkanSurface) destroyOffscreenResources() {
	for i := range s.stagingBuffers {
		if s.stagingBuffers[i] != vk.NullBuffer {
			vk.DestroyBuffer(s.device, s.stagingBuffers[i], nil)
			vk.FreeMemory(s.device, s.stagingMemory[i], nil)
		}
	}
	if s.colorImage != vk.NullImage {
		vk.DestroyImage(s.device, s.colorImage, nil)
		vk.FreeMemory(s.device, s.colorMemory, nil)
	}
}

func (s *VulkanSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil
	}
	s.destroyOffscreenResources()
	vk.DestroyCommandPool(s.device, s.commandPool, nil)
	vk.DestroyDevice(s.device, nil)
	vk.DestroyInstance(s.instance, nil)
	s.initialized = false
	return nil
}
