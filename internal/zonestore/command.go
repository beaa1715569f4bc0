package zonestore

// command 一次乐观修改：apply 立即生效，请求失败时执行 compensate，成功时执行 commit
// 三个函数都作用于调用时刻的最新状态
type command struct {
	name       string
	apply      func(State) State
	compensate func(State) State
	commit     func(State) State
}

func identity(s State) State { return s }

func (c command) applyFn() func(State) State {
	if c.apply == nil {
		return identity
	}
	return c.apply
}

func (c command) compensateFn() func(State) State {
	if c.compensate == nil {
		return identity
	}
	return c.compensate
}

func (c command) commitFn() func(State) State {
	if c.commit == nil {
		return identity
	}
	return c.commit
}
